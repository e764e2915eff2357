package appconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() *Config {
	cfg := &Config{}
	cfg.Profile = ProfileStandard
	cfg.Registry.Backend = "postgres"
	cfg.Registry.Host = "db.internal"
	cfg.Registry.Password = "s3cr3t"
	cfg.Resolver.Enabled = true
	cfg.Resolver.RedisAddr = "redis.internal:6379"
	cfg.Resolver.RedisPassword = "hunter2"
	cfg.Server.Port = 8080
	cfg.Log.Level = "info"
	return cfg
}

func TestDefaultSanitizer_Sanitize(t *testing.T) {
	s := NewDefaultSanitizer()
	cfg := sampleConfig()

	sanitized := s.Sanitize(cfg)

	assert.Equal(t, "***REDACTED***", sanitized.Registry.Password)
	assert.Equal(t, "***REDACTED***", sanitized.Resolver.RedisPassword)
	assert.Equal(t, cfg.Registry.Host, sanitized.Registry.Host)
	assert.Equal(t, cfg.Server.Port, sanitized.Server.Port)
	assert.Equal(t, cfg.Log.Level, sanitized.Log.Level)
}

func TestDefaultSanitizer_DoesNotMutateOriginal(t *testing.T) {
	s := NewDefaultSanitizer()
	cfg := sampleConfig()

	sanitized := s.Sanitize(cfg)

	require.NotSame(t, cfg, sanitized)
	assert.Equal(t, "s3cr3t", cfg.Registry.Password)
	assert.Equal(t, "hunter2", cfg.Resolver.RedisPassword)
}

func TestNewSanitizer_CustomRedactionValue(t *testing.T) {
	s := NewSanitizer("<hidden>")
	cfg := sampleConfig()

	sanitized := s.Sanitize(cfg)

	assert.Equal(t, "<hidden>", sanitized.Registry.Password)
	assert.Equal(t, "<hidden>", sanitized.Resolver.RedisPassword)
}

func TestDefaultSanitizer_EmptyConfig(t *testing.T) {
	s := NewDefaultSanitizer()
	cfg := &Config{}

	sanitized := s.Sanitize(cfg)

	require.NotNil(t, sanitized)
	assert.Equal(t, "***REDACTED***", sanitized.Registry.Password)
	assert.Empty(t, sanitized.Resolver.RedisPassword)
}
