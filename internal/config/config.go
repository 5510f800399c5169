// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// StoreType selects the Store implementation backing the engine.
type StoreType string

const (
	// PostgresStore uses a real PostgreSQL database.
	PostgresStore StoreType = "postgres"
	// MemoryStore uses the in-memory store. Useful for local runs and tests.
	MemoryStore StoreType = "memory"
)

// Config holds all configuration for the simulator backend.
type Config struct {
	StoreType string `mapstructure:"STORE_TYPE"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`

	// Database configuration. DatabaseURL wins when set; otherwise the
	// discrete fields are assembled into a DSN.
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	DatabaseHost     string `mapstructure:"DB_HOST"`
	DatabasePort     string `mapstructure:"DB_PORT"`
	DatabaseUser     string `mapstructure:"DB_USER"`
	DatabasePassword string `mapstructure:"DB_PASSWORD"`
	DatabaseName     string `mapstructure:"DB_NAME"`
	DatabaseSSLMode  string `mapstructure:"DB_SSL_MODE"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("STORE_TYPE", string(PostgresStore))
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_NAME", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")

	// AutomaticEnv alone does not feed Unmarshal; bind each key explicitly.
	for _, key := range []string{
		"STORE_TYPE", "LOG_LEVEL", "DATABASE_URL",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUser, c.DatabaseName, c.DatabaseSSLMode)
	if c.DatabasePassword != "" {
		dsn += " password=" + c.DatabasePassword
	}
	return dsn
}
