// Package resolvercache caches the outcome of disir's Default
// resolution (Keyval.DefaultAt) behind a two-tier lookup: an in-process
// LRU for the hot path, backed by Redis so repeated resolutions across
// disir-server replicas don't all re-walk the same Mold. Documentation
// and Restriction resolution are not cached.
package resolvercache

import (
	"context"
	"time"
)

// Cache is the narrow key/value contract resolvercache needs from a
// backing store. RedisCache implements it against Redis; tests can
// fake it without a real server.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// Config controls the Redis connection and retry behavior backing a
// RedisCache.
type Config struct {
	Addr     string        `env:"DISIR_REDIS_ADDR" default:"localhost:6379"`
	Password string        `env:"DISIR_REDIS_PASSWORD" default:""`
	DB       int           `env:"DISIR_REDIS_DB" default:"0"`

	PoolSize     int           `env:"DISIR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `env:"DISIR_REDIS_MIN_IDLE_CONNS" default:"1"`

	DialTimeout  time.Duration `env:"DISIR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `env:"DISIR_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `env:"DISIR_REDIS_WRITE_TIMEOUT" default:"3s"`

	MaxRetries      int           `env:"DISIR_REDIS_MAX_RETRIES" default:"3"`
	MinRetryBackoff time.Duration `env:"DISIR_REDIS_MIN_RETRY_BACKOFF" default:"8ms"`
	MaxRetryBackoff time.Duration `env:"DISIR_REDIS_MAX_RETRY_BACKOFF" default:"512ms"`
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return ErrInvalidConfig
	}
	if c.PoolSize <= 0 {
		return ErrInvalidConfig
	}
	if c.DialTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// Error is a resolvercache-specific error carrying a stable code, the
// way the teacher's CacheError does.
type Error struct {
	Message string
	Code    string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(message, code string) *Error { return &Error{Message: message, Code: code} }

func (e *Error) withCause(cause error) *Error {
	e.Cause = cause
	return e
}

var (
	ErrNotFound         = newError("key not found", "NOT_FOUND")
	ErrInvalidConfig    = newError("invalid resolvercache configuration", "CONFIG_ERROR")
	ErrConnectionFailed = newError("connection failed", "CONNECTION_ERROR")
)

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Code == "NOT_FOUND"
}
