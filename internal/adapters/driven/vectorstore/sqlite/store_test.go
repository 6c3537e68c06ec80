package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/querra/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() }) //nolint:errcheck
	return store
}

func TestCountEmptyCollection(t *testing.T) {
	store := newTestStore(t)

	count, err := store.Count(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpsertAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{
		{
			ID:        "c1",
			Text:      "along x",
			Metadata:  map[string]any{"source": "a.txt"},
			Embedding: []float32{1, 0},
		},
		{
			ID:        "c2",
			Text:      "along y",
			Metadata:  map[string]any{"source": "a.txt"},
			Embedding: []float32{0, 1},
		},
	}
	require.NoError(t, store.Upsert(ctx, "key", chunks))

	count, err := store.Count(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	hits, err := store.Search(ctx, "key", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "along x", hits[0].Text)
	assert.Equal(t, "a.txt", hits[0].Metadata["source"])
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
}

func TestUpsertReplacesExistingIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "key", []domain.Chunk{
		{ID: "c1", Text: "old", Metadata: map[string]any{}, Embedding: []float32{1, 0}},
	}))
	require.NoError(t, store.Upsert(ctx, "key", []domain.Chunk{
		{ID: "c1", Text: "new", Metadata: map[string]any{}, Embedding: []float32{1, 0}},
	}))

	count, err := store.Count(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := store.Search(ctx, "key", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Text)
}

func TestCollectionsAreIsolated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "one", []domain.Chunk{
		{ID: "c1", Text: "in one", Metadata: map[string]any{}, Embedding: []float32{1, 0}},
	}))

	count, err := store.Count(ctx, "two")
	require.NoError(t, err)
	assert.Zero(t, count)

	hits, err := store.Search(ctx, "two", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, "key", []domain.Chunk{
		{ID: "c1", Text: "survives", Metadata: map[string]any{}, Embedding: []float32{1, 0}},
	}))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close() //nolint:errcheck

	count, err := reopened.Count(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorRoundTrip(t *testing.T) {
	original := []float32{0.25, -1.5, 3.75, 0}
	assert.Equal(t, original, decodeVector(encodeVector(original)))
}
