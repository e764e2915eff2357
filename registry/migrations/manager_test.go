//go:build integration

package migrations

import (
	"context"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startTestPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("disir_test"),
		postgres.WithUsername("disir"),
		postgres.WithPassword("disir"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func testConfig(dsn string) *Config {
	cfg := DefaultConfig()
	cfg.Driver = "pgx"
	cfg.DSN = dsn
	cfg.Dir = "sql"
	return cfg
}

func TestManager_UpCreatesSchema(t *testing.T) {
	dsn := startTestPostgres(t)
	manager, err := NewManager(testConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	require.NoError(t, manager.Up(context.Background()))

	version, err := manager.Version(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, version)
}

func TestManager_DownRollsBackLastMigration(t *testing.T) {
	dsn := startTestPostgres(t)
	manager, err := NewManager(testConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	ctx := context.Background()
	require.NoError(t, manager.Up(ctx))
	require.NoError(t, manager.Down(ctx))

	version, err := manager.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, version)
}

func TestManager_ResetRollsBackEverything(t *testing.T) {
	dsn := startTestPostgres(t)
	manager, err := NewManager(testConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	ctx := context.Background()
	require.NoError(t, manager.Up(ctx))
	require.NoError(t, manager.Reset(ctx))

	version, err := manager.Version(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, version)
}

func TestManager_StatusSucceedsWithNoMigrationsApplied(t *testing.T) {
	dsn := startTestPostgres(t)
	manager, err := NewManager(testConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	require.NoError(t, manager.Status(context.Background()))
}
