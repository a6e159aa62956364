package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the brand registry engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Registry engine tuning
	Registry RegistryConfig `yaml:"registry"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"PGPORT" env-default:"5432"`
	User            string        `yaml:"user" env:"PGUSER" env-default:"ttb"`
	Password        string        `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database        string        `yaml:"database" env:"PGDATABASE" env-default:"ttb_registry"`
	MaxConnections  int32         `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"PGMAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"PGMAX_CONN_IDLE_TIME" env-default:"30m"`
	SSLMode         string        `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RegistryConfig holds tuning knobs for the registry engine itself.
type RegistryConfig struct {
	// RecencyWindowDays is the window inside which a brand earns recency points.
	RecencyWindowDays int `yaml:"recency_window_days" env:"RECENCY_WINDOW_DAYS" env-default:"180"`

	// CompetitorNamesStr is a comma-separated watch list of competitor name
	// variants matched against importer/producer owner names.
	CompetitorNamesStr string `yaml:"competitor_names" env:"COMPETITOR_NAMES" env-default:"MHW,M.H.W.,MHW LTD"`

	// CompetitorNames is the parsed list from CompetitorNamesStr (not from config file).
	CompetitorNames []string `yaml:"-"`

	// PageSize is the fixed page size for filtered brand queries.
	PageSize int `yaml:"page_size" env:"PAGE_SIZE" env-default:"50"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Registry.CompetitorNames = parseList(cfg.Registry.CompetitorNamesStr)

	if cfg.Registry.PageSize <= 0 {
		return nil, fmt.Errorf("page_size must be positive, got %d", cfg.Registry.PageSize)
	}
	if cfg.Registry.RecencyWindowDays <= 0 {
		return nil, fmt.Errorf("recency_window_days must be positive, got %d", cfg.Registry.RecencyWindowDays)
	}

	return cfg, nil
}

// parseList splits a comma-separated string into trimmed, non-empty entries.
func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
