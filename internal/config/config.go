package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Export    ExportConfig    `mapstructure:"export"`
	Events    EventsConfig    `mapstructure:"events"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"` // Max request body in bytes
}

// DataConfig controls how the in-memory records are produced
type DataConfig struct {
	Seed     uint64 `mapstructure:"seed"`
	FromYear int    `mapstructure:"from_year"`
	ToYear   int    `mapstructure:"to_year"`
	// SnapshotPath is loaded at startup when present. Empty disables snapshots.
	SnapshotPath  string `mapstructure:"snapshot_path"`
	WriteSnapshot bool   `mapstructure:"write_snapshot"` // Save a generated bundle to SnapshotPath
	Compression   string `mapstructure:"compression"`    // none, snappy (default)
}

// AnalyticsConfig bounds the analytics endpoints
type AnalyticsConfig struct {
	DefaultForecastPeriods int    `mapstructure:"default_forecast_periods"`
	MaxForecastPeriods     int    `mapstructure:"max_forecast_periods"`
	Forecaster             string `mapstructure:"forecaster"` // linear (default), holt
	DefaultPageSize        int    `mapstructure:"default_page_size"`
	MaxPageSize            int    `mapstructure:"max_page_size"`
}

// ExportConfig represents async export configuration
type ExportConfig struct {
	Dir             string        `mapstructure:"dir"`
	Workers         int           `mapstructure:"workers"`
	QueueSize       int           `mapstructure:"queue_size"`
	Expiration      time.Duration `mapstructure:"expiration"`       // How long finished files stay downloadable
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // How often expired tasks are removed
}

// EventsConfig represents event bus configuration
type EventsConfig struct {
	Type    string `mapstructure:"type"`    // Bus type: memory (default), nats, redis, kafka, none
	URL     string `mapstructure:"url"`     // Bus server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Subject string `mapstructure:"subject"` // Subject prefix (default: "datahub")

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisPassword string `mapstructure:"redis_password"` // Optional authentication
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "datahub-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("export config: %w", err)
	}

	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("events config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}

	return nil
}

// Validate validates data configuration
func (c *DataConfig) Validate() error {
	if c.FromYear <= 0 {
		return fmt.Errorf("data.from_year must be positive")
	}

	if c.ToYear < c.FromYear {
		return fmt.Errorf("data.to_year (%d) is before data.from_year (%d)", c.ToYear, c.FromYear)
	}

	switch c.Compression {
	case "", "none", "snappy":
	default:
		return fmt.Errorf("data.compression must be 'none' or 'snappy'")
	}

	if c.WriteSnapshot && c.SnapshotPath == "" {
		return fmt.Errorf("data.write_snapshot requires data.snapshot_path")
	}

	return nil
}

// Validate validates analytics configuration
func (c *AnalyticsConfig) Validate() error {
	if c.MaxForecastPeriods < 1 {
		return fmt.Errorf("analytics.max_forecast_periods must be at least 1")
	}

	if c.DefaultForecastPeriods < 1 || c.DefaultForecastPeriods > c.MaxForecastPeriods {
		return fmt.Errorf("analytics.default_forecast_periods must be between 1 and %d", c.MaxForecastPeriods)
	}

	if c.MaxPageSize < 1 {
		return fmt.Errorf("analytics.max_page_size must be at least 1")
	}

	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("analytics.default_page_size must be between 1 and %d", c.MaxPageSize)
	}

	switch c.Forecaster {
	case "", "linear", "holt":
	default:
		return fmt.Errorf("analytics.forecaster must be 'linear' or 'holt'")
	}

	return nil
}

// Validate validates export configuration
func (c *ExportConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}

	if c.Workers < 1 {
		return fmt.Errorf("export.workers must be at least 1")
	}

	if c.QueueSize < 1 {
		return fmt.Errorf("export.queue_size must be at least 1")
	}

	if c.Expiration <= 0 {
		return fmt.Errorf("export.expiration must be positive")
	}

	return nil
}

// Validate validates event bus configuration
func (c *EventsConfig) Validate() error {
	switch c.Type {
	case "", "memory", "none":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("events.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("events.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("unsupported events.type: %s (supported: memory, nats, redis, kafka, none)", c.Type)
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
