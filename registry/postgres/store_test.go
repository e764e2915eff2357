//go:build integration

package postgres_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kspt-johs/disir-go/registry"
	"github.com/kspt-johs/disir-go/registry/migrations"
	"github.com/kspt-johs/disir-go/registry/postgres"
)

// setupTestStore starts a Postgres container, applies the registry
// schema migrations against it, and returns a connected postgres.Store.
func setupTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("disir_test"),
		tcpostgres.WithUsername("disir"),
		tcpostgres.WithPassword("disir"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	port, err := strconv.Atoi(mappedPort.Port())
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationConfig := migrations.DefaultConfig()
	migrationConfig.Driver = "pgx"
	migrationConfig.DSN = dsn
	migrationConfig.Dir = "../migrations/sql"
	manager, err := migrations.NewManager(migrationConfig)
	require.NoError(t, err)
	require.NoError(t, manager.Up(ctx))
	require.NoError(t, manager.Close())

	poolConfig := postgres.DefaultConfig()
	poolConfig.Host = host
	poolConfig.Port = port
	poolConfig.Database = "disir_test"
	poolConfig.User = "disir"
	poolConfig.Password = "disir"

	pool := postgres.New(poolConfig, nil)
	require.NoError(t, pool.Connect(ctx))
	t.Cleanup(func() { _ = pool.Close() })

	return postgres.NewStore(pool)
}

func TestStore_PutThenGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := registry.Document{
		Namespace: "default",
		Name:      "app",
		Kind:      registry.KindMold,
		Format:    registry.FormatYAML,
		Bytes:     []byte("version: 1.0.0\n"),
	}
	stored, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	require.Equal(t, int64(1), stored.Revision)

	got, err := s.Get(ctx, "default", "app", registry.KindMold)
	require.NoError(t, err)
	require.Equal(t, stored.ID, got.ID)
	require.Equal(t, []byte("version: 1.0.0\n"), got.Bytes)
}

func TestStore_Get_NotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.Get(context.Background(), "default", "missing", registry.KindMold)
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestStore_Put_RevisionIncrements(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := registry.Document{Namespace: "default", Name: "app", Kind: registry.KindConfig, Format: registry.FormatJSON, Bytes: []byte(`{"a":1}`)}
	first, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Revision)

	doc.Bytes = []byte(`{"a":2}`)
	second, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Revision)
	require.Equal(t, first.ID, second.ID)
}

func TestStore_Put_ConflictOnStaleRevision(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := registry.Document{Namespace: "default", Name: "app", Kind: registry.KindMold, Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n")}
	stored, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)

	_, err = s.Put(ctx, stored, stored.Revision+1)
	require.ErrorIs(t, err, registry.ErrConflict)
}

func TestStore_History_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc := registry.Document{Namespace: "default", Name: "app", Kind: registry.KindConfig, Format: registry.FormatJSON, Bytes: []byte(`{"a":1}`)}
	_, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	doc.Bytes = []byte(`{"a":2}`)
	_, err = s.Put(ctx, doc, 0)
	require.NoError(t, err)

	history, err := s.History(ctx, "default", "app", registry.KindConfig)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, int64(2), history[0].Revision)
	require.Equal(t, int64(1), history[1].Revision)
}

func TestStore_List(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta"} {
		_, err := s.Put(ctx, registry.Document{
			Namespace: "ns", Name: name, Kind: registry.KindMold,
			Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n"),
		}, 0)
		require.NoError(t, err)
	}

	docs, err := s.List(ctx, "ns", registry.KindMold)
	require.NoError(t, err)
	require.Len(t, docs, 2)
}

func TestStore_Delete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, registry.Document{
		Namespace: "ns", Name: "gone", Kind: registry.KindMold,
		Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n"),
	}, 0)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "ns", "gone", registry.KindMold))

	_, err = s.Get(ctx, "ns", "gone", registry.KindMold)
	require.ErrorIs(t, err, registry.ErrNotFound)
}
