package resolvercache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by a real (or miniredis-faked) Redis
// server, storing values JSON-encoded under namespaced keys.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache dials Redis and verifies connectivity with a ping.
func NewRedisCache(config *Config, logger *slog.Logger) (*RedisCache, error) {
	if config == nil {
		config = &Config{Addr: "localhost:6379", PoolSize: 10, DialTimeout: 5 * time.Second}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:            config.Addr,
		Password:        config.Password,
		DB:              config.DB,
		PoolSize:        config.PoolSize,
		MinIdleConns:    config.MinIdleConns,
		DialTimeout:     config.DialTimeout,
		ReadTimeout:     config.ReadTimeout,
		WriteTimeout:    config.WriteTimeout,
		MaxRetries:      config.MaxRetries,
		MinRetryBackoff: config.MinRetryBackoff,
		MaxRetryBackoff: config.MaxRetryBackoff,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, ErrConnectionFailed.withCause(err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

// NewRedisCacheWithClient wraps an already-configured *redis.Client —
// used in tests against alicebob/miniredis.
func NewRedisCacheWithClient(client *redis.Client, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, logger: logger}
}

func (rc *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return newError("failed to get value from cache", "GET_ERROR").withCause(err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return newError("failed to decode cached value", "DECODE_ERROR").withCause(err)
	}
	return nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return newError("failed to encode value for cache", "ENCODE_ERROR").withCause(err)
	}
	if err := rc.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return newError("failed to set value in cache", "SET_ERROR").withCause(err)
	}
	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, key).Err(); err != nil {
		return newError("failed to delete key from cache", "DELETE_ERROR").withCause(err)
	}
	return nil
}

func (rc *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rc.client.Exists(ctx, key).Result()
	if err != nil {
		return false, newError("failed to check key existence", "EXISTS_ERROR").withCause(err)
	}
	return n > 0, nil
}

func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
