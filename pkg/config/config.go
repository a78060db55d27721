package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "REVENUE_CONFIG"
	// DefaultConfigPath is used when neither a flag nor EnvConfigPath is set.
	DefaultConfigPath = "config.yaml"
)

// Config represents the revenue server configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Database   *DatabaseConfig  `yaml:"database"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Cache      CacheConfig      `yaml:"cache"`
	Limits     LimitsConfig     `yaml:"limits"`
	Notify     NotifyConfig     `yaml:"notify"`
	Warmer     WarmerConfig     `yaml:"warmer"`
	Auth       AuthConfig       `yaml:"auth"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host" default:"0.0.0.0"`
	Port         int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"0s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" default:"60s"`
}

// DatabaseConfig contains database connection settings. The database is optional;
// without it no snapshot history is recorded.
type DatabaseConfig struct {
	Host     string `yaml:"host" default:"localhost" validate:"required"`
	Port     int    `yaml:"port" default:"5432" validate:"min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Database string `yaml:"database" default:"revenue" validate:"required"`
	SSLMode  string `yaml:"ssl_mode" default:"disable" validate:"oneof=disable require verify-full"`
}

// GatewayConfig contains the remote revenue service settings
type GatewayConfig struct {
	URL            string            `yaml:"url" validate:"required"`
	MaxMessageSize int               `yaml:"max_message_size" default:"4194304"`
	RequestTimeout time.Duration     `yaml:"request_timeout" default:"30s"`
	PageSize       int               `yaml:"page_size" default:"20" validate:"min=1,max=200"`
	TLS            *GatewayTLSConfig `yaml:"tls"`
	OAuth          *OAuthConfig      `yaml:"oauth"`
}

// GatewayTLSConfig defines transport security for the gateway connection
type GatewayTLSConfig struct {
	Enabled            bool   `yaml:"enabled"`
	CertFile           string `yaml:"cert_file"`
	KeyFile            string `yaml:"key_file"`
	CAFile             string `yaml:"ca_file"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// OAuthConfig contains client credentials for the gateway
type OAuthConfig struct {
	ClientID     string        `yaml:"client_id" validate:"required"`
	ClientSecret string        `yaml:"client_secret" validate:"required"` //nolint:gosec // config field name
	Audience     string        `yaml:"audience"`
	TokenURL     string        `yaml:"token_url" validate:"required,url"`
	ExpiryLeeway time.Duration `yaml:"expiry_leeway" default:"60s"`
}

// CacheConfig contains snapshot freshness windows
type CacheConfig struct {
	PreloadWindow time.Duration `yaml:"preload_window" default:"30s" validate:"gt=0"`
	ReadWindow    time.Duration `yaml:"read_window" default:"5m" validate:"gt=0"`
}

// LimitsConfig contains withdrawal limits as decimal strings, per currency
type LimitsConfig struct {
	Token RangeConfig `yaml:"token"`
	Chain RangeConfig `yaml:"chain"`
}

// RangeConfig is an inclusive min/max pair
type RangeConfig struct {
	Min string `yaml:"min" default:"0" validate:"required,numeric"`
	Max string `yaml:"max" validate:"required,numeric"`
}

// NotifyConfig contains notification bus settings
type NotifyConfig struct {
	Buffer          int           `yaml:"buffer" default:"256" validate:"min=1"`
	AMQPURL         string        `yaml:"amqp_url"`
	Exchange        string        `yaml:"exchange" default:"revenue_events"`
	AMQPDialTimeout time.Duration `yaml:"amqp_dial_timeout" default:"10s"`
}

// WarmerConfig contains the scheduled preload settings
type WarmerConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Schedule string          `yaml:"schedule" default:"@every 1m" validate:"required"`
	Entities []WatchedEntity `yaml:"entities" validate:"dive"`
}

// WatchedEntity is an (account, entity) pair kept warm by the warmer
type WatchedEntity struct {
	Account int64 `yaml:"account" validate:"required,gt=0"`
	Entity  int64 `yaml:"entity" validate:"required"`
}

// AuthConfig contains API authentication settings
type AuthConfig struct {
	Issuer    string        `yaml:"issuer" default:"revenue-middleware"`
	SecretEnv string        `yaml:"secret_env" default:"REVENUE_JWT_SECRET" validate:"required"`
	Leeway    time.Duration `yaml:"leeway" default:"30s"`

	// Secret is read from the environment variable named by SecretEnv.
	Secret string `yaml:"-"`
}

// MonitoringConfig contains metrics settings
type MonitoringConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
	OutputPath string `yaml:"output_path" default:"stdout"`
}

// ShutdownConfig contains graceful shutdown settings
type ShutdownConfig struct {
	Timeout time.Duration `yaml:"timeout" default:"30s"`
}

// ResolvePath returns flagPath, or the path from the environment, or the default.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse defaults and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	cfg.Auth.Secret = os.Getenv(cfg.Auth.SecretEnv)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return err
	}
	if cfg.Cache.PreloadWindow > cfg.Cache.ReadWindow {
		return errors.New("cache.preload_window must not exceed cache.read_window")
	}
	return nil
}

// RequireAuthSecret fails when the JWT secret environment variable is empty.
func (c *Config) RequireAuthSecret() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth secret missing: set %s", c.Auth.SecretEnv)
	}
	return nil
}
