package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/shareit/service-rental/internal/platform/config"
)

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port           string `validate:"required"`
	AppEnv         string `validate:"required"`
	MetricsEnabled bool
	DBConfig       config.DatabaseConfig
	KafkaConfig    config.KafkaConfig
	AuthConfig     config.AuthConfig
	RedisConfig    config.RedisConfig
	RateLimit      config.RateLimitConfig
}

// Load reads configuration from RENTAL_* environment variables, .env and config.yaml.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTAL")
	if err != nil {
		return nil, err
	}

	cfg := &ServiceConfig{
		Port:           config.GetServicePort(v),
		AppEnv:         config.GetAppEnv(v),
		MetricsEnabled: v.GetBool("metrics.enabled"),
		DBConfig:       config.LoadDatabaseConfig(v, "rental"),
		KafkaConfig:    config.LoadKafkaConfig(v),
		AuthConfig:     config.LoadAuthConfig(v),
		RedisConfig:    config.LoadRedisConfig(v),
		RateLimit:      config.LoadRateLimitConfig(v),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints such as a JWT secret being set in jwt mode.
func (c *ServiceConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
