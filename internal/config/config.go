package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	LogLevel     string
	DevMode      bool
	DatabasePath string

	// Methodology settings
	UseViews          bool    // enable view blending before optimization
	ExpectedReturnMin float64 // lower edge of the sanity band
	ExpectedReturnMax float64 // upper edge of the sanity band
	RiskFreeRate      float64
	MaxWeight         float64 // per-asset concentration cap

	// Recommendation settings
	MinAllocationEUR   float64
	RebalanceThreshold float64 // percentage points

	// History settings
	HistoryRetentionDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvAsInt("PORT", 8080),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		DatabasePath:         getEnv("DATABASE_PATH", "./data/allocator.db"),
		UseViews:             getEnvAsBool("USE_VIEWS_IN_OPTIMIZATION", false),
		ExpectedReturnMin:    getEnvAsFloat("EXPECTED_RETURN_MIN", -0.05),
		ExpectedReturnMax:    getEnvAsFloat("EXPECTED_RETURN_MAX", 0.15),
		RiskFreeRate:         getEnvAsFloat("RISK_FREE_RATE", 0.025),
		MaxWeight:            getEnvAsFloat("MAX_WEIGHT", 0.50),
		MinAllocationEUR:     getEnvAsFloat("MIN_ALLOCATION_EUR", 500),
		RebalanceThreshold:   getEnvAsFloat("REBALANCE_THRESHOLD", 5.0),
		HistoryRetentionDays: getEnvAsInt("HISTORY_RETENTION_DAYS", 365),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.ExpectedReturnMin >= c.ExpectedReturnMax {
		return fmt.Errorf("EXPECTED_RETURN_MIN must be below EXPECTED_RETURN_MAX")
	}
	if c.MaxWeight <= 0 || c.MaxWeight > 1 {
		return fmt.Errorf("MAX_WEIGHT must be in (0, 1]")
	}
	if c.RebalanceThreshold <= 0 {
		return fmt.Errorf("REBALANCE_THRESHOLD must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
