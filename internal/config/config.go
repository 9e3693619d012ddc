package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the server configuration
type Config struct {
	ListenAddr    string        // HTTP listen address
	DatabaseURL   string        // sqlite:// or postgres:// URL
	LogLevel      string        // logrus level name
	MergeBatch    int           // companies copied per merge batch
	TaskRetention time.Duration // how long terminal tasks are kept
	SeedDemoData  bool          // seed demo companies into an empty DB
}

// Load reads configuration from the environment, optionally preloaded from a
// local .env file. Missing values fall back to development defaults.
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		DatabaseURL:   getEnv("DATABASE_URL", "sqlite://./jamdash.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		MergeBatch:    getEnvInt("MERGE_BATCH_SIZE", 500),
		TaskRetention: getEnvDuration("TASK_RETENTION", time.Hour),
		SeedDemoData:  getEnvBool("SEED_DEMO_DATA", true),
	}
}

func getEnv(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvInt retrieves an integer from environment variable with default fallback
func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration from environment variable with default fallback
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}
