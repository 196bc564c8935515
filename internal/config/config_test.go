package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-rental/internal/platform/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "postgres", cfg.DBConfig.Driver)
	assert.Equal(t, "rental", cfg.DBConfig.DBName)
	assert.Equal(t, "header", cfg.AuthConfig.Mode)
	assert.False(t, cfg.KafkaConfig.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaConfig.Brokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RENTAL_SERVICE_PORT", "9090")
	t.Setenv("RENTAL_DB_DRIVER", "sqlite")
	t.Setenv("RENTAL_DB_PATH", "/tmp/rental.db")
	t.Setenv("RENTAL_KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBConfig.Driver)
	assert.Equal(t, "/tmp/rental.db", cfg.DBConfig.DSN())
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaConfig.Brokers)
}

func TestValidate_JWTModeNeedsSecret(t *testing.T) {
	cfg := &ServiceConfig{
		Port:       ":8080",
		AppEnv:     "production",
		DBConfig:   config.DatabaseConfig{Driver: "sqlite", Path: "x.db"},
		AuthConfig: config.AuthConfig{Mode: "jwt"},
	}
	require.Error(t, cfg.Validate())

	cfg.AuthConfig.JWTSecret = "s3cret"
	require.NoError(t, cfg.Validate())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &ServiceConfig{
		Port:       ":8080",
		AppEnv:     "production",
		DBConfig:   config.DatabaseConfig{Driver: "oracle"},
		AuthConfig: config.AuthConfig{Mode: "header"},
	}
	assert.Error(t, cfg.Validate())
}
