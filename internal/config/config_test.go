package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, string(PostgresStore), cfg.StoreType)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.DatabaseHost)
	assert.Equal(t, "5432", cfg.DatabasePort)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORE_TYPE", "memory")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, string(MemoryStore), cfg.StoreType)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "db.internal", cfg.DatabaseHost)
}

func TestDSNAssembly(t *testing.T) {
	cfg := &Config{
		DatabaseHost:    "localhost",
		DatabasePort:    "5432",
		DatabaseUser:    "postgres",
		DatabaseName:    "gateway",
		DatabaseSSLMode: "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=postgres dbname=gateway sslmode=disable", cfg.DSN())

	cfg.DatabasePassword = "secret"
	assert.Contains(t, cfg.DSN(), "password=secret")
}

func TestDSNPrefersDatabaseURL(t *testing.T) {
	cfg := &Config{
		DatabaseURL:  "postgres://u:p@h:5432/db",
		DatabaseHost: "ignored",
	}
	assert.Equal(t, "postgres://u:p@h:5432/db", cfg.DSN())
}
