package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Source   SourceConfig
	Memory   MemoryConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// SourceConfig holds input-artifact download configuration
type SourceConfig struct {
	WorkDir         string
	DownloadTimeout time.Duration
	MaxAttempts     int
	CountriesFile   string
}

// MemoryConfig holds resource-guard configuration
type MemoryConfig struct {
	CeilingPercent  float64
	CriticalPercent float64
	// MaxFileBytes caps artifact size when memory telemetry is unavailable.
	MaxFileBytes int64
	// EstimateFactor multiplies artifact size for the admission estimate.
	EstimateFactor int64
}

// LoadConfig loads configuration from environment variables.
// ADDR_DB_URL deliberately has no default: connection strings carry
// credentials and must be supplied explicitly.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("ADDR_DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Source: SourceConfig{
			WorkDir:         getEnv("OSM_WORK_DIR", "./osm_data"),
			DownloadTimeout: getEnvAsDuration("OSM_DOWNLOAD_TIMEOUT", 30*time.Minute),
			MaxAttempts:     getEnvAsInt("OSM_DOWNLOAD_ATTEMPTS", 3),
			CountriesFile:   getEnv("OSM_COUNTRIES_FILE", ""),
		},
		Memory: MemoryConfig{
			CeilingPercent:  getEnvAsFloat64("MEM_CEILING_PERCENT", 85),
			CriticalPercent: getEnvAsFloat64("MEM_CRITICAL_PERCENT", 90),
			MaxFileBytes:    getEnvAsInt64("MEM_MAX_FILE_BYTES", 200*1024*1024),
			EstimateFactor:  getEnvAsInt64("MEM_ESTIMATE_FACTOR", 2),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "ADDR_DB_URL is required", ErrInvalidInput)
	}
	if c.Memory.CeilingPercent <= 0 || c.Memory.CeilingPercent >= 100 {
		return NewAppError("CONFIG_ERROR", "MEM_CEILING_PERCENT must be between 0 and 100", ErrInvalidInput)
	}
	if c.Memory.CriticalPercent < c.Memory.CeilingPercent {
		return NewAppError("CONFIG_ERROR", "MEM_CRITICAL_PERCENT must not be below MEM_CEILING_PERCENT", ErrInvalidInput)
	}
	return nil
}
