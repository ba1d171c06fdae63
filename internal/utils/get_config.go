package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppPort        string `yaml:"APP_PORT"`
	AppEnv         string `yaml:"APP_ENV"`
	Timezone       string `yaml:"TIMEZONE"`
	RequestTimeout string `yaml:"REQUEST_TIMEOUT"`
	LogLevel       string `yaml:"LOG_LEVEL"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	// Identity provider
	JWTSecret string `yaml:"JWT_SECRET"`
	JWTIssuer string `yaml:"JWT_ISSUER"`

	// AWS S3 configuration (proof storage)
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Impact conversion factors
	MealsPerKg               string `yaml:"MEALS_PER_KG"`
	CO2PerKg                 string `yaml:"CO2_PER_KG"`
	BeneficiariesPerDonation string `yaml:"BENEFICIARIES_PER_DONATION"`

	// Matching
	DistanceMetric string `yaml:"DISTANCE_METRIC"`
	MaxDistanceKm  string `yaml:"MAX_DISTANCE_KM"`
	CharityPolicy  string `yaml:"CHARITY_POLICY"`
}

var (
	config   Config
	configMu sync.RWMutex
)

var defaults = map[string]string{
	"APP_PORT":                   "8080",
	"APP_ENV":                    "development",
	"TIMEZONE":                   "UTC",
	"REQUEST_TIMEOUT":            "10s",
	"LOG_LEVEL":                  "info",
	"DB_HOST":                    "127.0.0.1",
	"DB_PORT":                    "5432",
	"DB_SSLMODE":                 "disable",
	"JWT_ISSUER":                 "FOOD-RESCUE",
	"MEALS_PER_KG":               "2.5",
	"CO2_PER_KG":                 "2.5",
	"BENEFICIARIES_PER_DONATION": "1",
	"DISTANCE_METRIC":            "haversine",
	"MAX_DISTANCE_KM":            "0",
	"CHARITY_POLICY":             "nearest",
}

// LoadConfig reads the yaml file named by CONFIG_PATH (config.yaml by default).
// A missing file is not fatal: environment variables and defaults still apply.
func LoadConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	var loaded Config
	file, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
	} else if err := yaml.Unmarshal(file, &loaded); err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
	}

	configMu.Lock()
	config = loaded
	configMu.Unlock()
}

func fileValue(key string) string {
	configMu.RLock()
	defer configMu.RUnlock()

	switch key {
	case "APP_PORT":
		return config.AppPort
	case "APP_ENV":
		return config.AppEnv
	case "TIMEZONE":
		return config.Timezone
	case "REQUEST_TIMEOUT":
		return config.RequestTimeout
	case "LOG_LEVEL":
		return config.LogLevel
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "DB_SSLMODE":
		return config.DBSSLMode
	case "JWT_SECRET":
		return config.JWTSecret
	case "JWT_ISSUER":
		return config.JWTIssuer
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "MEALS_PER_KG":
		return config.MealsPerKg
	case "CO2_PER_KG":
		return config.CO2PerKg
	case "BENEFICIARIES_PER_DONATION":
		return config.BeneficiariesPerDonation
	case "DISTANCE_METRIC":
		return config.DistanceMetric
	case "MAX_DISTANCE_KM":
		return config.MaxDistanceKm
	case "CHARITY_POLICY":
		return config.CharityPolicy
	default:
		return ""
	}
}

// GetConfig resolves a key from the environment, then the yaml file, then defaults.
func GetConfig(key string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(fileValue(key)); val != "" {
		return val
	}
	return defaults[key]
}

func GetFloatConfig(key string) float64 {
	val := GetConfig(key)
	parsed, err := strconv.ParseFloat(val, 64)
	if err == nil {
		return parsed
	}
	log.Printf("Invalid %s %q, falling back to %q: %s\n", key, val, defaults[key], err)
	parsed, _ = strconv.ParseFloat(defaults[key], 64)
	return parsed
}

func GetIntConfig(key string) int64 {
	val := GetConfig(key)
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err == nil {
		return parsed
	}
	log.Printf("Invalid %s %q, falling back to %q: %s\n", key, val, defaults[key], err)
	parsed, _ = strconv.ParseInt(defaults[key], 10, 64)
	return parsed
}

func GetDurationConfig(key string) time.Duration {
	val := GetConfig(key)
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second
	}
	parsed, _ := time.ParseDuration(defaults[key])
	return parsed
}

// GetLocation returns the configured timezone used to bucket impact metrics by day.
func GetLocation() *time.Location {
	loc, err := time.LoadLocation(GetConfig("TIMEZONE"))
	if err != nil {
		log.Printf("Invalid TIMEZONE %q, falling back to UTC: %s\n", GetConfig("TIMEZONE"), err)
		return time.UTC
	}
	return loc
}
