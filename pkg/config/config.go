package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for lakegate-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, signing keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Data lake configuration
	Lake LakeConfig `yaml:"lake"`

	// Full-text search backend configuration (Elasticsearch)
	Search SearchConfig `yaml:"search"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether bearer token signatures are
	// validated. Set to false for local development without an issuer.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// SigningKey is the shared HMAC secret for bearer tokens.
	// Required when EnableVerification is true.
	SigningKey string `yaml:"-" env:"AUTH_SIGNING_KEY"` // Secret - not in YAML
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"lakegate"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"lakegate_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// LakeConfig holds data-lake read settings.
type LakeConfig struct {
	// DefaultVersion is the lake version used for requests that are not
	// version-scoped (retrieve_all, retrieve_projection, stats).
	DefaultVersion string `yaml:"default_version" env:"LAKE_DEFAULT_VERSION" env-default:"V1"`

	// CanonicalDataset is the dataset backing the transactions and stats
	// endpoints.
	CanonicalDataset string `yaml:"canonical_dataset" env:"LAKE_CANONICAL_DATASET" env-default:"TRANSACTIONS_COMPLETED"`

	// PageSize is the fixed page size for paginated dataset reads.
	PageSize int `yaml:"page_size" env:"LAKE_PAGE_SIZE" env-default:"10"`
}

// SearchConfig holds Elasticsearch connection settings for the secondary
// full-text index.
type SearchConfig struct {
	// Address of the Elasticsearch node, e.g. http://localhost:9200.
	Address string `yaml:"address" env:"SEARCH_ADDRESS" env-default:"http://localhost:9200"`

	// Index is the name of the transactions index.
	Index string `yaml:"index" env:"SEARCH_INDEX" env-default:"transactions"`

	// MaxRetries bounds the one-shot startup connection attempts.
	MaxRetries int `yaml:"max_retries" env:"SEARCH_MAX_RETRIES" env-default:"3"`

	// RetryDelaySeconds is the fixed delay between startup attempts.
	RetryDelaySeconds int `yaml:"retry_delay_seconds" env:"SEARCH_RETRY_DELAY_SECONDS" env-default:"5"`
}

// RetryDelay returns the configured delay between startup connection
// attempts as a duration.
func (c *SearchConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. Secrets (PGPASSWORD, AUTH_SIGNING_KEY) must come from
// environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.EnableVerification && c.Auth.SigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when auth verification is enabled")
	}
	if c.Lake.PageSize <= 0 {
		return fmt.Errorf("lake page_size must be positive")
	}
	if c.Search.MaxRetries < 1 {
		return fmt.Errorf("search max_retries must be at least 1")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
