package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")            // Current directory
		v.AddConfigPath("./configs")    // Project configs directory
		v.AddConfigPath("/etc/datahub") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// DATAHUB_SERVER_HTTP_PORT overrides server.http_port
	v.SetEnvPrefix("DATAHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	// Data defaults
	v.SetDefault("data.seed", d.Data.Seed)
	v.SetDefault("data.from_year", d.Data.FromYear)
	v.SetDefault("data.to_year", d.Data.ToYear)
	v.SetDefault("data.snapshot_path", d.Data.SnapshotPath)
	v.SetDefault("data.write_snapshot", d.Data.WriteSnapshot)
	v.SetDefault("data.compression", d.Data.Compression)

	// Analytics defaults
	v.SetDefault("analytics.default_forecast_periods", d.Analytics.DefaultForecastPeriods)
	v.SetDefault("analytics.max_forecast_periods", d.Analytics.MaxForecastPeriods)
	v.SetDefault("analytics.forecaster", d.Analytics.Forecaster)
	v.SetDefault("analytics.default_page_size", d.Analytics.DefaultPageSize)
	v.SetDefault("analytics.max_page_size", d.Analytics.MaxPageSize)

	// Export defaults
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("export.workers", d.Export.Workers)
	v.SetDefault("export.queue_size", d.Export.QueueSize)
	v.SetDefault("export.expiration", d.Export.Expiration)
	v.SetDefault("export.cleanup_interval", d.Export.CleanupInterval)

	// Events defaults
	v.SetDefault("events.type", d.Events.Type)
	v.SetDefault("events.url", d.Events.URL)
	v.SetDefault("events.subject", d.Events.Subject)

	// Auth defaults
	v.SetDefault("auth.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5555,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			BodyLimit:    4 * 1024 * 1024,
		},
		Data: DataConfig{
			Seed:        42,
			FromYear:    2015,
			ToYear:      2025,
			Compression: "snappy",
		},
		Analytics: AnalyticsConfig{
			DefaultForecastPeriods: 3,
			MaxForecastPeriods:     10,
			Forecaster:             "linear",
			DefaultPageSize:        100,
			MaxPageSize:            1000,
		},
		Export: ExportConfig{
			Dir:             "./exports",
			Workers:         2,
			QueueSize:       64,
			Expiration:      time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Events: EventsConfig{
			Type:    "memory",
			Subject: "datahub",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
