package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the store analytics service
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Shopify  ShopifyConfig  `mapstructure:"shopify"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Security SecurityConfig `mapstructure:"security"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds Redis configuration for the sync lock
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ShopifyConfig holds Shopify Admin API configuration
type ShopifyConfig struct {
	APIVersion string `mapstructure:"api_version"`
}

// SyncConfig holds background sync configuration
type SyncConfig struct {
	// Workers is the number of goroutines draining the sync queue.
	Workers int `mapstructure:"workers"`
	// QueueSize is the buffered job queue capacity.
	QueueSize int `mapstructure:"queue_size"`
	// LookbackDays bounds how far back ShopifyQL metrics are pulled.
	LookbackDays int `mapstructure:"lookback_days"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"` // 32-byte key for token encryption
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvPrefix("") // No prefix, read exact variable names

	_ = v.BindEnv("app.name", "APP_NAME")
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("app.port", "APP_PORT")

	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.name", "DB_NAME")
	_ = v.BindEnv("database.ssl_mode", "DB_SSLMODE")

	_ = v.BindEnv("redis.host", "REDIS_HOST")
	_ = v.BindEnv("redis.port", "REDIS_PORT")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")

	_ = v.BindEnv("nats.url", "NATS_URL")

	_ = v.BindEnv("shopify.api_version", "SHOPIFY_API_VERSION")

	_ = v.BindEnv("sync.workers", "SYNC_WORKERS")
	_ = v.BindEnv("sync.queue_size", "SYNC_QUEUE_SIZE")
	_ = v.BindEnv("sync.lookback_days", "SYNC_LOOKBACK_DAYS")

	_ = v.BindEnv("security.encryption_key", "ANALYTICS_ENCRYPTION_KEY")

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "service-store-analytics")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8010")

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "store_analytics")
	v.SetDefault("database.ssl_mode", "disable")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// NATS
	v.SetDefault("nats.url", "")

	// Shopify
	v.SetDefault("shopify.api_version", "2026-01")

	// Sync
	v.SetDefault("sync.workers", 2)
	v.SetDefault("sync.queue_size", 32)
	v.SetDefault("sync.lookback_days", 90)
}
