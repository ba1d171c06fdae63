package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	slogger *zap.SugaredLogger
	mux     sync.Mutex
)

func init() {
	logger, _ := zap.NewDevelopment(zap.AddCallerSkip(1))
	slogger = logger.Sugar()
}

// Init replaces the development logger with one suited to env ("production"
// emits JSON) at the given level.
func Init(env, level string) error {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	mux.Lock()
	slogger = logger.Sugar()
	mux.Unlock()
	return nil
}

// SetLogger installs an externally built logger, e.g. zap.NewNop() in tests.
func SetLogger(logger *zap.Logger) {
	mux.Lock()
	defer mux.Unlock()
	slogger = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

func current() *zap.SugaredLogger {
	mux.Lock()
	defer mux.Unlock()
	return slogger
}

func DebugLog(msg string, keysAndValues ...interface{}) {
	current().Debugw(msg, keysAndValues...)
}

func InfoLog(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, keysAndValues...)
}

func WarnLog(msg string, keysAndValues ...interface{}) {
	current().Warnw(msg, keysAndValues...)
}

func ErrorLog(msg string, keysAndValues ...interface{}) {
	current().Errorw(msg, keysAndValues...)
}

func FatalLog(msg string, keysAndValues ...interface{}) {
	current().Fatalw(msg, keysAndValues...)
}

func Sync() {
	_ = current().Sync()
}
