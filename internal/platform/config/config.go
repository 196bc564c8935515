package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig describes the relational store connection.
type DatabaseConfig struct {
	Driver   string `validate:"oneof=postgres sqlite"`
	Host     string `validate:"required_if=Driver postgres"`
	Port     int    `validate:"required_if=Driver postgres"`
	User     string
	Password string
	DBName   string `validate:"required_if=Driver postgres"`
	SSLMode  string
	Path     string `validate:"required_if=Driver sqlite"`
}

// DSN returns the driver-specific data source name.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// DatabaseURL returns a postgres:// URL suitable for golang-migrate.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// KafkaConfig describes the event broker.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string `validate:"required_if=Enabled true"`
	GroupPrefix string
}

// AuthConfig selects how the acting user is resolved.
type AuthConfig struct {
	Mode      string `validate:"oneof=header jwt"`
	JWTSecret string `validate:"required_if=Mode jwt"`
	TokenTTL  time.Duration
}

// RedisConfig describes the shared rate-limit store.
type RedisConfig struct {
	Enabled  bool
	Addr     string `validate:"required_if=Enabled true"`
	Password string
	DB       int
}

// RateLimitConfig bounds requests per client.
type RateLimitConfig struct {
	Enabled bool
	RPS     float64 `validate:"gte=0"`
	Burst   int     `validate:"gte=0"`
	Window  time.Duration
}

// Load reads an optional .env file and config.yaml, then binds environment
// variables under the given prefix (FOO_DB_HOST -> db.host).
func Load(prefix string) (*viper.Viper, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("service.port", "8080")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "rental.db")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.group_prefix", "")
	v.SetDefault("auth.mode", "header")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)
	v.SetDefault("ratelimit.window", "1s")
	v.SetDefault("metrics.enabled", true)
}

// GetAppEnv returns the deployment environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("app.env")
}

// GetServicePort returns the listen address in ":port" form.
func GetServicePort(v *viper.Viper) string {
	port := v.GetString("service.port")
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// LoadDatabaseConfig reads the db.* keys.
func LoadDatabaseConfig(v *viper.Viper, defaultName string) DatabaseConfig {
	name := v.GetString("db.name")
	if name == "" {
		name = defaultName
	}
	return DatabaseConfig{
		Driver:   v.GetString("db.driver"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		DBName:   name,
		SSLMode:  v.GetString("db.sslmode"),
		Path:     v.GetString("db.path"),
	}
}

// LoadKafkaConfig reads the kafka.* keys. Brokers may be comma-separated.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	return KafkaConfig{
		Enabled:     v.GetBool("kafka.enabled"),
		Brokers:     splitList(v.GetString("kafka.brokers")),
		GroupPrefix: v.GetString("kafka.group_prefix"),
	}
}

// LoadAuthConfig reads the auth.* keys.
func LoadAuthConfig(v *viper.Viper) AuthConfig {
	return AuthConfig{
		Mode:      v.GetString("auth.mode"),
		JWTSecret: v.GetString("auth.jwt_secret"),
		TokenTTL:  v.GetDuration("auth.token_ttl"),
	}
}

// LoadRedisConfig reads the redis.* keys.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

// LoadRateLimitConfig reads the ratelimit.* keys.
func LoadRateLimitConfig(v *viper.Viper) RateLimitConfig {
	return RateLimitConfig{
		Enabled: v.GetBool("ratelimit.enabled"),
		RPS:     v.GetFloat64("ratelimit.rps"),
		Burst:   v.GetInt("ratelimit.burst"),
		Window:  v.GetDuration("ratelimit.window"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
