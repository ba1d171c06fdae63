package main

import (
	"Food-Rescue-Coordinator/cmd/config"
	migration "Food-Rescue-Coordinator/cmd/database/migrate"
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/internal/utils"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"Food-Rescue-Coordinator/internal/utils/storage"
	"Food-Rescue-Coordinator/pkg/jwt"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	db       *gorm.DB
	tokenTTL time.Duration
)

var rootCmd = &cobra.Command{
	Use:               "rescue",
	Short:             "Food rescue coordinator",
	PersistentPreRunE: connect,
	PersistentPostRun: disconnect,
	SilenceUsage:      true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := config.NewApp(db)
		if err != nil {
			return err
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			logger.InfoLog("Shutting down server")
			_ = app.ShutdownWithTimeout(10 * time.Second)
		}()

		addr := ":" + utils.GetConfig("APP_PORT")
		logger.InfoLog("Starting server", "addr", addr)
		return app.Listen(addr)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return migration.Migrate(db)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run one matching pass over every pending donation",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := config.NewServices(db, storage.NewAwsS3())
		if err != nil {
			return err
		}
		summary, err := services.Matching.MatchPending(cmd.Context(), domain.SystemPrincipal)
		if err != nil {
			return err
		}
		fmt.Printf("assigned: %d, no candidate: %d, failed: %d\n",
			len(summary.Assigned), len(summary.NoCandidate), len(summary.Failed))
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a bearer token for a stored user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := config.NewServices(db, storage.NewAwsS3())
		if err != nil {
			return err
		}
		u, err := services.User.ResolveRole(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		token, err := jwt.NewJWTService().GenerateTokenUser(u.ID.String(), u.Role, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func connect(cmd *cobra.Command, args []string) error {
	utils.LoadConfig()
	if err := logger.Init(utils.GetConfig("APP_ENV"), utils.GetConfig("LOG_LEVEL")); err != nil {
		return err
	}
	var err error
	db, err = config.ConnectDB()
	if err != nil {
		logger.ErrorLog("Connect to database failed", "host", utils.GetConfig("DB_HOST"), "err", err)
		return err
	}
	return nil
}

func disconnect(cmd *cobra.Command, args []string) {
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	logger.Sync()
}

func main() {
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
