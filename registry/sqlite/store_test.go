package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kspt-johs/disir-go/registry"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutThenGet(t *testing.T) {
	s := openTestStore(t)
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
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, int64(1), stored.Revision)

	got, err := s.Get(ctx, "default", "app", registry.KindMold)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, []byte("version: 1.0.0\n"), got.Bytes)
}

func TestStore_Get_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "default", "missing", registry.KindMold)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestStore_Put_RevisionIncrements(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := registry.Document{Namespace: "default", Name: "app", Kind: registry.KindConfig, Format: registry.FormatJSON, Bytes: []byte(`{"a":1}`)}
	first, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Revision)

	doc.Bytes = []byte(`{"a":2}`)
	second, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Revision)
	assert.Equal(t, first.ID, second.ID)
}

func TestStore_Put_ConflictOnStaleRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := registry.Document{Namespace: "default", Name: "app", Kind: registry.KindMold, Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n")}
	stored, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)

	_, err = s.Put(ctx, stored, stored.Revision+1)
	assert.ErrorIs(t, err, registry.ErrConflict)
}

func TestStore_Put_ConflictOnCreateWithExpectedRevision(t *testing.T) {
	s := openTestStore(t)
	doc := registry.Document{Namespace: "default", Name: "new", Kind: registry.KindMold, Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n")}
	_, err := s.Put(context.Background(), doc, 5)
	assert.ErrorIs(t, err, registry.ErrConflict)
}

func TestStore_History_NewestFirst(t *testing.T) {
	s := openTestStore(t)
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
	assert.Equal(t, int64(2), history[0].Revision)
	assert.Equal(t, int64(1), history[1].Revision)
}

func TestStore_GetRevision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := registry.Document{Namespace: "default", Name: "app", Kind: registry.KindMold, Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n")}
	_, err := s.Put(ctx, doc, 0)
	require.NoError(t, err)
	doc.Bytes = []byte("version: 2.0.0\n")
	_, err = s.Put(ctx, doc, 0)
	require.NoError(t, err)

	rev1, err := s.GetRevision(ctx, "default", "app", registry.KindMold, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("version: 1.0.0\n"), rev1.Bytes)
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)
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
	assert.Equal(t, "alpha", docs[0].Name)
	assert.Equal(t, "beta", docs[1].Name)
}

func TestStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, registry.Document{
		Namespace: "ns", Name: "gone", Kind: registry.KindMold,
		Format: registry.FormatYAML, Bytes: []byte("version: 1.0.0\n"),
	}, 0)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "ns", "gone", registry.KindMold))

	_, err = s.Get(ctx, "ns", "gone", registry.KindMold)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestStore_Delete_NotFound(t *testing.T) {
	s := openTestStore(t)
	err := s.Delete(context.Background(), "ns", "missing", registry.KindMold)
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
