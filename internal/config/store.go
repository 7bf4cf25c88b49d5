package config

import (
	"os"
	"strconv"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// LoadStoreConfig loads store configuration from environment variables
func LoadStoreConfig() *store.Config {
	cfg := &store.Config{
		URI:      getEnv("STORE_URI", ""),
		Driver:   getEnv("STORE_DRIVER", store.DriverValkey),
		Username: getEnv("STORE_USERNAME", ""),
		Password: getEnv("STORE_PASSWORD", ""),
	}

	// Parse timeouts with defaults
	cfg.ConnectionTimeout = getEnvInt("STORE_CONN_TIMEOUT", 5)
	cfg.OperationTimeout = getEnvInt("STORE_OP_TIMEOUT", 3)

	return cfg
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as a float with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
