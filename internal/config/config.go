package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"dataprof/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Analysis AnalysisConfig
	Paths    PathConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Host    string
	Port    int
	Name    string
	User    string
	SSLMode string
}

// ConnectionURL returns the explicit DATAPROF_DB_URL when set, otherwise
// composes a postgres URL from the component fields. Empty when neither
// names a database.
func (c DatabaseConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	if c.User != "" {
		u.User = url.User(c.User)
	}
	return u.String()
}

// AnalysisConfig holds statistical engine settings
type AnalysisConfig struct {
	// SampleSize is the row threshold T; nil disables sampling entirely.
	SampleSize *int
	Seed       uint64
	// Workers bounds the host-side per-column parallelism.
	Workers int
}

// PathConfig holds file system paths
type PathConfig struct {
	InputFile string
	ReportDir string
}

// Load reads configuration from environment variables and validates it.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Database: loadDatabaseConfig(),
		Paths: PathConfig{
			InputFile: getEnvOrDefault("DATAPROF_INPUT", ""),
			ReportDir: getEnvOrDefault("DATAPROF_REPORT_DIR", "."),
		},
	}

	analysisConfig, err := loadAnalysisConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	config.Analysis = *analysisConfig

	return config, nil
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATAPROF_DB_URL", ""),
		Host:    getEnvOrDefault("DB_HOST", "localhost"),
		Port:    getEnvIntOrDefault("DB_PORT", 5432),
		Name:    getEnvOrDefault("DB_NAME", ""),
		User:    getEnvOrDefault("DB_USER", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadAnalysisConfig() (*AnalysisConfig, error) {
	cfg := &AnalysisConfig{
		Seed:    uint64(getEnvIntOrDefault("DATAPROF_SEED", 42)),
		Workers: getEnvIntOrDefault("DATAPROF_WORKERS", 4),
	}
	if cfg.Workers < 1 {
		return nil, errors.ConfigInvalid("DATAPROF_WORKERS must be at least 1")
	}

	if raw := os.Getenv("DATAPROF_SAMPLE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, errors.ConfigInvalid("DATAPROF_SAMPLE_SIZE must be a positive integer")
		}
		cfg.SampleSize = &n
	}

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
