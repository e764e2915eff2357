package migrations

import (
	"log/slog"
	"time"
)

// Config controls how the registry schema migrations run.
type Config struct {
	Driver  string `env:"DISIR_MIGRATION_DRIVER" default:"postgres"`
	DSN     string `env:"DISIR_MIGRATION_DSN" default:""`
	Dialect string `env:"DISIR_MIGRATION_DIALECT" default:"postgres"`

	Dir   string `env:"DISIR_MIGRATION_DIR" default:"registry/migrations/sql"`
	Table string `env:"DISIR_MIGRATION_TABLE" default:"disir_schema_version"`

	Timeout    time.Duration `env:"DISIR_MIGRATION_TIMEOUT" default:"5m"`
	MaxRetries int           `env:"DISIR_MIGRATION_MAX_RETRIES" default:"3"`
	RetryDelay time.Duration `env:"DISIR_MIGRATION_RETRY_DELAY" default:"5s"`

	Verbose bool `env:"DISIR_MIGRATION_VERBOSE" default:"false"`

	Logger *slog.Logger
}

// DefaultConfig returns the migration settings used by disirctl when
// no flags/env override them.
func DefaultConfig() *Config {
	return &Config{
		Driver:     "postgres",
		Dialect:    "postgres",
		Dir:        "registry/migrations/sql",
		Table:      "disir_schema_version",
		Timeout:    5 * time.Minute,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
	}
}
