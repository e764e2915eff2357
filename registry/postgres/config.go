// Package postgres is disir-server's PostgreSQL-backed registry.Store
// implementation: a pooled pgx connection plus the SQL that persists
// Mold/Config documents and their version history.
package postgres

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the settings needed to connect to PostgreSQL.
type Config struct {
	Host     string `yaml:"host" env:"DISIR_DB_HOST"`
	Port     int    `yaml:"port" env:"DISIR_DB_PORT"`
	Database string `yaml:"database" env:"DISIR_DB_NAME"`
	User     string `yaml:"user" env:"DISIR_DB_USER"`
	Password string `yaml:"password" env:"DISIR_DB_PASSWORD"`

	SSLMode string `yaml:"ssl_mode" env:"DISIR_DB_SSL_MODE"`

	MaxConns int32 `yaml:"max_conns" env:"DISIR_DB_MAX_CONNS"`
	MinConns int32 `yaml:"min_conns" env:"DISIR_DB_MIN_CONNS"`

	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime" env:"DISIR_DB_MAX_CONN_LIFETIME"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time" env:"DISIR_DB_MAX_CONN_IDLE_TIME"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" env:"DISIR_DB_HEALTH_CHECK_PERIOD"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" env:"DISIR_DB_CONNECT_TIMEOUT"`
}

// DefaultConfig returns sane defaults for local development.
func DefaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		Port:              5432,
		Database:          "disir",
		User:              "disir",
		Password:          "",
		SSLMode:           "disable",
		MaxConns:          20,
		MinConns:          2,
		MaxConnLifetime:   1 * time.Hour,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    30 * time.Second,
	}
}

// LoadFromEnv overlays DISIR_DB_* environment variables onto the defaults.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if host := os.Getenv("DISIR_DB_HOST"); host != "" {
		cfg.Host = host
	}
	if portStr := os.Getenv("DISIR_DB_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = port
		}
	}
	if database := os.Getenv("DISIR_DB_NAME"); database != "" {
		cfg.Database = database
	}
	if user := os.Getenv("DISIR_DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DISIR_DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if sslMode := os.Getenv("DISIR_DB_SSL_MODE"); sslMode != "" {
		cfg.SSLMode = sslMode
	}
	if maxConnsStr := os.Getenv("DISIR_DB_MAX_CONNS"); maxConnsStr != "" {
		if maxConns, err := strconv.ParseInt(maxConnsStr, 10, 32); err == nil {
			cfg.MaxConns = int32(maxConns)
		}
	}
	if minConnsStr := os.Getenv("DISIR_DB_MIN_CONNS"); minConnsStr != "" {
		if minConns, err := strconv.ParseInt(minConnsStr, 10, 32); err == nil {
			cfg.MinConns = int32(minConns)
		}
	}

	return cfg
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535")
	}
	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}
	if c.MinConns < 0 {
		return fmt.Errorf("min connections cannot be negative")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections cannot be greater than max connections")
	}
	if c.MaxConnLifetime <= 0 {
		return fmt.Errorf("max connection lifetime must be greater than 0")
	}
	if c.MaxConnIdleTime <= 0 {
		return fmt.Errorf("max connection idle time must be greater than 0")
	}
	if c.HealthCheckPeriod <= 0 {
		return fmt.Errorf("health check period must be greater than 0")
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s", c.SSLMode)
	}

	return nil
}

// DSN returns the pgx connection string built from this configuration.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}
