package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

const envPrefix = "FORECAST"

// Config is the runtime configuration of the forecast server and CLI
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Forecast ForecastConfig `mapstructure:"forecast"`
}

// ServerConfig configures the gRPC and metrics listeners
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// DatabaseConfig selects the storage backend.
// Path is used by bolt and badger, URL by postgres.
type DatabaseConfig struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
	URL  string `mapstructure:"url"`
}

// LoggingConfig configures the logrus logger
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ForecastConfig holds request defaults used when a caller leaves them unset
type ForecastConfig struct {
	DefaultHorizon int    `mapstructure:"default_horizon"`
	DefaultPeriod  string `mapstructure:"default_period"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "50053",
			MetricsAddr: ":9090",
		},
		Database: DatabaseConfig{
			Type: "bolt",
			Path: "./data/pharmacy.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Forecast: ForecastConfig{
			DefaultHorizon: 3,
			DefaultPeriod:  string(domain.PeriodMonthly),
		},
	}
}

// Load reads configuration from defaults, the optional file at path, and
// FORECAST_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.metrics_addr", defaults.Server.MetricsAddr)
	v.SetDefault("database.type", defaults.Database.Type)
	v.SetDefault("database.path", defaults.Database.Path)
	v.SetDefault("database.url", defaults.Database.URL)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("forecast.default_horizon", defaults.Forecast.DefaultHorizon)
	v.SetDefault("forecast.default_period", defaults.Forecast.DefaultPeriod)
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "bolt", "badger":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for %s", c.Database.Type)
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Forecast.DefaultHorizon < 1 {
		return fmt.Errorf("forecast.default_horizon must be positive, got %d", c.Forecast.DefaultHorizon)
	}
	if _, err := domain.ParsePeriodType(c.Forecast.DefaultPeriod); err != nil {
		return fmt.Errorf("forecast.default_period: %w", err)
	}
	return nil
}
