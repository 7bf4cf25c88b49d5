package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/SiriusScan/redis-tools/internal/store"
)

// Config holds all configuration for one run of the tool
type Config struct {
	// Logging settings
	Log LogConfig

	// Store settings
	Store *store.Config

	// Engine settings
	Engine EngineConfig

	// Metrics settings
	Metrics MetricsConfig
}

// LogConfig selects the logger level and encoding
type LogConfig struct {
	Level  string
	Format string // json or text
}

// EngineConfig tunes the copy and lazy delete engine
type EngineConfig struct {
	DeleteRate        float64 // lazy delete batches per second, 0 disables pacing
	MaxScanIterations int     // round trips allowed per chunk sequence, negative disables the bound
	StatisThreshold   int64   // minimum element count reported by statis_keys
}

// MetricsConfig configures the optional Pushgateway export
type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Load creates a new Config instance from environment variables
// and optionally from a .env file
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Store: LoadStoreConfig(),
		Engine: EngineConfig{
			DeleteRate:        getEnvFloat("DELETE_RATE", 0),
			MaxScanIterations: getEnvInt("SCAN_MAX_ITERATIONS", 1000000),
			StatisThreshold:   int64(getEnvInt("STATIS_THRESHOLD", 2000)),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: os.Getenv("METRICS_PUSHGATEWAY"),
			Job:            getEnv("METRICS_JOB", "redis_tools"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// validate checks if all configuration values are present and valid
func (c *Config) validate() error {
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}
	if c.Store.Driver != store.DriverValkey && c.Store.Driver != store.DriverGoRedis {
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}
	if c.Store.ConnectionTimeout < 0 || c.Store.OperationTimeout < 0 {
		return fmt.Errorf("store timeouts must not be negative")
	}
	if c.Engine.DeleteRate < 0 {
		return fmt.Errorf("invalid delete rate: %v", c.Engine.DeleteRate)
	}
	if c.Engine.StatisThreshold < 0 {
		return fmt.Errorf("invalid statis threshold: %d", c.Engine.StatisThreshold)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return validLevels[level]
}
