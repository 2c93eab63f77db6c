// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mediavault/domain/pricing"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Pricing  []TierConfig   `yaml:"pricing"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// AuthConfig configures JWT authentication.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret,omitempty"`
	TokenExpiration time.Duration `yaml:"token_expiration"`
}

// StorageConfig configures the object storage backend. Signed URL
// credentials are optional; the signed-url endpoint returns 503 until
// both are set.
type StorageConfig struct {
	Bucket          string `yaml:"bucket"`
	LocalRoot       string `yaml:"local_root"` // filesystem adapter root
	CDNDomain       string `yaml:"cdn_domain"` // base URL assets are served from
	SignedURLKeyID  string `yaml:"signed_url_key_id"`
	SignedURLSecret string `yaml:"signed_url_secret,omitempty"`
}

// TierConfig configures one pricing tier. MaxGB 0 (or omitted) marks the
// final, unbounded tier.
type TierConfig struct {
	Name       string  `yaml:"name"`
	MaxGB      float64 `yaml:"max_gb"`
	PricePerGB float64 `yaml:"price_per_gb"`
}

// CleanupConfig configures the soft-delete retention sweep.
type CleanupConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Retention time.Duration `yaml:"retention"`
	Interval  time.Duration `yaml:"interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	MEDIAVAULT_DATABASE_DSN      - Database path (default: mediavault.db)
//	MEDIAVAULT_SERVER_HOST       - Server host (default: 0.0.0.0)
//	MEDIAVAULT_SERVER_PORT       - Server port (default: 8080)
//	MEDIAVAULT_AUTH_JWT_SECRET   - JWT signing secret
//	MEDIAVAULT_STORAGE_BUCKET    - Object storage bucket (default: media)
//	MEDIAVAULT_CLEANUP_RETENTION - Soft-delete retention (default: 90h)
//	MEDIAVAULT_CLEANUP_INTERVAL  - Sweep interval (default: 6h)
//	MEDIAVAULT_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	MEDIAVAULT_LOG_FORMAT        - Log format: json or console (default: json)
//	MEDIAVAULT_METRICS_ENABLED   - Enable /metrics endpoint (default: true)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// PricingSchedule converts the configured tiers into a pricing schedule,
// falling back to the default CloudFront-style tiers when none are set.
func (c *Config) PricingSchedule() pricing.Schedule {
	if len(c.Pricing) == 0 {
		return pricing.Default()
	}

	schedule := make(pricing.Schedule, len(c.Pricing))
	for i, t := range c.Pricing {
		schedule[i] = pricing.Tier{
			Name:       t.Name,
			MaxGB:      t.MaxGB,
			PricePerGB: t.PricePerGB,
		}
	}
	return schedule
}

// applyEnvOverrides applies MEDIAVAULT_* environment variables to the
// config. Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("MEDIAVAULT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MEDIAVAULT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MEDIAVAULT_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("MEDIAVAULT_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := os.Getenv("MEDIAVAULT_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("MEDIAVAULT_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Auth configuration
	if v := os.Getenv("MEDIAVAULT_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("MEDIAVAULT_AUTH_TOKEN_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenExpiration = d
		}
	}

	// Storage configuration
	if v := os.Getenv("MEDIAVAULT_STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("MEDIAVAULT_STORAGE_LOCAL_ROOT"); v != "" {
		cfg.Storage.LocalRoot = v
	}
	if v := os.Getenv("MEDIAVAULT_STORAGE_CDN_DOMAIN"); v != "" {
		cfg.Storage.CDNDomain = v
	}
	if v := os.Getenv("MEDIAVAULT_STORAGE_SIGNED_URL_KEY_ID"); v != "" {
		cfg.Storage.SignedURLKeyID = v
	}
	if v := os.Getenv("MEDIAVAULT_STORAGE_SIGNED_URL_SECRET"); v != "" {
		cfg.Storage.SignedURLSecret = v
	}

	// Cleanup configuration
	if v := os.Getenv("MEDIAVAULT_CLEANUP_ENABLED"); v != "" {
		cfg.Cleanup.Enabled = parseBool(v)
	}
	if v := os.Getenv("MEDIAVAULT_CLEANUP_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cleanup.Retention = d
		}
	}
	if v := os.Getenv("MEDIAVAULT_CLEANUP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cleanup.Interval = d
		}
	}

	// Logging configuration
	if v := os.Getenv("MEDIAVAULT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MEDIAVAULT_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("MEDIAVAULT_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("MEDIAVAULT_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "mediavault.db"
	}

	if cfg.Auth.TokenExpiration == 0 {
		cfg.Auth.TokenExpiration = 24 * time.Hour
	}

	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "media"
	}
	if cfg.Storage.LocalRoot == "" {
		cfg.Storage.LocalRoot = "data/objects"
	}

	if cfg.Cleanup.Retention == 0 {
		cfg.Cleanup.Retention = 90 * time.Hour
	}
	if cfg.Cleanup.Interval == 0 {
		cfg.Cleanup.Interval = 6 * time.Hour
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	if err := cfg.PricingSchedule().Validate(); err != nil {
		return err
	}

	if cfg.Cleanup.Retention < 0 {
		return fmt.Errorf("cleanup.retention must not be negative")
	}
	if cfg.Cleanup.Interval < time.Minute {
		return fmt.Errorf("cleanup.interval must be at least one minute")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be json or console, got %q", cfg.Logging.Format)
	}

	return nil
}
