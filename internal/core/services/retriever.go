package services

import (
	"context"
	"fmt"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/logger"
)

// DefaultTopK is the default similarity search result count.
const DefaultTopK = 10

// Retriever is a stateless query facade over one collection: it embeds
// the query text and runs a top-k similarity search. Failures surface to
// the caller; no retry happens here.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
	key      string
	topK     int
}

// NewRetriever binds a retriever to a collection key. A non-positive
// topK falls back to DefaultTopK.
func NewRetriever(embedder driven.EmbeddingService, store driven.VectorStore, key string, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, key: key, topK: topK}
}

// CollectionKey returns the collection this retriever queries.
func (r *Retriever) CollectionKey() string {
	return r.key
}

// Query returns the topK nearest chunks to the query text, best match
// first.
func (r *Retriever) Query(ctx context.Context, text string) ([]domain.ScoredChunk, error) {
	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, r.key, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search collection %s: %w", r.key, err)
	}

	logger.Debug("retrieved %d chunks from %s", len(hits), r.key)
	return hits, nil
}
