// Package config provides configuration management for the service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"hydrospark/internal/logging"
)

// Config is the service configuration, loaded from the environment
type Config struct {
	// Port the HTTP server listens on
	Port string

	// PostgresDSN is the connection string for the usage database
	PostgresDSN string

	// RedisAddr enables the bill cache when non-empty
	RedisAddr string

	// RateSchedulePath points at an HCL rate schedule; empty means the
	// built-in default schedule
	RateSchedulePath string

	// SigmaThreshold is the anomaly detection threshold in standard
	// deviations
	SigmaThreshold float64

	// Logging contains logging configuration
	Logging logging.Config
}

// Load reads configuration from the environment, with a .env file as a
// non-fatal convenience.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RateSchedulePath: os.Getenv("RATE_SCHEDULE_PATH"),
		Logging: logging.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
	}

	sigmaStr := getEnv("ANOMALY_SIGMA_THRESHOLD", "2.0")
	sigma, err := strconv.ParseFloat(sigmaStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ANOMALY_SIGMA_THRESHOLD: %w", err)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("ANOMALY_SIGMA_THRESHOLD must be positive, got %g", sigma)
	}
	cfg.SigmaThreshold = sigma

	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
