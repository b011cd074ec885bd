// Package config loads engine and observability settings for binaries
// embedding the cache, from a YAML file and environment variables.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/kabeer11000/cache"
)

// Config holds all configuration for a cache-embedding process.
type Config struct {
	Cache         cache.Config        `mapstructure:"cache"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// MetricsConfig holds metrics settings
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read environment variables
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not fatal if env vars are set
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Cache defaults
	v.SetDefault("cache.default_ttl", "5m")
	v.SetDefault("cache.max_entries", 1024)
	v.SetDefault("cache.reap_interval", "1m")
	v.SetDefault("cache.allow_stale", false)
	v.SetDefault("cache.stale_while_revalidate", "0s")
	v.SetDefault("cache.stale_if_error", "0s")
	v.SetDefault("cache.clone_on_access", false)

	// Observability defaults
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.port", 9091)
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if err := c.Cache.Validate(); err != nil {
		return err
	}

	switch c.Observability.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %s", c.Observability.Logging.Format)
	}

	if c.Observability.Metrics.Enabled {
		if p := c.Observability.Metrics.Port; p <= 0 || p > 65535 {
			return fmt.Errorf("invalid metrics port: %d", p)
		}
	}

	return nil
}
