package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldtlabs/querra/internal/core/domain"
)

func TestCountMissingCollection(t *testing.T) {
	store := New()

	count, err := store.Count(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUpsertAndCount(t *testing.T) {
	store := New()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "a", Text: "first", Embedding: []float32{1, 0}},
		{ID: "b", Text: "second", Embedding: []float32{0, 1}},
	}
	require.NoError(t, store.Upsert(ctx, "key", chunks))

	count, err := store.Count(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Upserting the same ids replaces rather than duplicates.
	require.NoError(t, store.Upsert(ctx, "key", chunks[:1]))
	count, err = store.Count(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "key", []domain.Chunk{
		{ID: "x", Text: "along x", Embedding: []float32{1, 0}},
		{ID: "y", Text: "along y", Embedding: []float32{0, 1}},
		{ID: "xy", Text: "diagonal", Embedding: []float32{1, 1}},
	}))

	hits, err := store.Search(ctx, "key", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "along x", hits[0].Text)
	assert.Equal(t, "diagonal", hits[1].Text)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchEmptyCollection(t *testing.T) {
	store := New()

	hits, err := store.Search(context.Background(), "missing", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched lengths and zero vectors score zero.
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}
