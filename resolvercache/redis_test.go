package resolvercache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache, err := NewRedisCache(&Config{
		Addr:        mr.Addr(),
		PoolSize:    5,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cache.Close()
		mr.Close()
	})
	return cache, mr
}

func TestRedisCache_SetThenGetRoundTrips(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	entry := Entry{Found: true, Value: "8080"}
	require.NoError(t, cache.Set(ctx, "port@1.0.0", entry, time.Minute))

	var got Entry
	require.NoError(t, cache.Get(ctx, "port@1.0.0", &got))
	assert.Equal(t, entry, got)
}

func TestRedisCache_GetMissingKeyIsNotFound(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	var got Entry
	err := cache.Get(ctx, "missing", &got)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestRedisCache_Exists(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	ok, err := cache.Exists(ctx, "port@1.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "port@1.0.0", Entry{Found: true, Value: "8080"}, time.Minute))
	ok, err = cache.Exists(ctx, "port@1.0.0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "port@1.0.0", Entry{Found: true, Value: "8080"}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "port@1.0.0"))

	var got Entry
	err := cache.Get(ctx, "port@1.0.0", &got)
	assert.True(t, IsNotFound(err))
}

func TestRedisCache_HealthCheck(t *testing.T) {
	cache, mr := setupTestRedis(t)
	assert.NoError(t, cache.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cache.HealthCheck(context.Background()))
}

func TestConfig_ValidateRejectsEmptyAddr(t *testing.T) {
	cfg := &Config{Addr: "", PoolSize: 10}
	assert.Error(t, cfg.Validate())
}

func TestConfig_ValidateRejectsNonPositivePoolSize(t *testing.T) {
	cfg := &Config{Addr: "localhost:6379", PoolSize: 0}
	assert.Error(t, cfg.Validate())
}
