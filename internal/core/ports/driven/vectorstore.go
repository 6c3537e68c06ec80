package driven

import (
	"context"

	"github.com/veldtlabs/querra/internal/core/domain"
)

// VectorStore is a named-collection vector index supporting batch upsert
// and k-nearest-neighbour similarity search. Collections are created on
// first ingestion and treated as immutable afterwards; the store owns
// all persistence.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, key string) error

	// Count returns the number of stored chunks in the collection.
	// A missing collection may report zero or an error depending on the
	// backend; callers treat both as "absent".
	Count(ctx context.Context, key string) (int, error)

	// Upsert writes a batch of chunks (ids, texts, metadata, vectors)
	// to the collection. The write is atomic at the batch level: a
	// partial write is an error, never silently ignored.
	Upsert(ctx context.Context, key string, chunks []domain.Chunk) error

	// Search returns the k nearest chunks to the query vector by the
	// store's distance metric, best match first.
	Search(ctx context.Context, key string, query []float32, k int) ([]domain.ScoredChunk, error)

	// Close releases resources.
	Close() error
}
