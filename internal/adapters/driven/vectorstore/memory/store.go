// Package memory provides an in-memory vector store using brute-force
// cosine similarity. Intended for tests and local development; contents
// are lost on process exit.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store holds collections of chunks in memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Chunk
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{collections: make(map[string]map[string]domain.Chunk)}
}

// EnsureCollection creates the collection if it does not exist.
func (s *Store) EnsureCollection(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[key]; !ok {
		s.collections[key] = make(map[string]domain.Chunk)
	}
	return nil
}

// Count returns the number of chunks stored under key. A missing
// collection counts as zero.
func (s *Store) Count(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[key]), nil
}

// Upsert writes the batch, replacing chunks with matching ids.
func (s *Store) Upsert(_ context.Context, key string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, ok := s.collections[key]
	if !ok {
		collection = make(map[string]domain.Chunk)
		s.collections[key] = collection
	}
	for _, chunk := range chunks {
		collection[chunk.ID] = chunk
	}
	return nil
}

// Search returns the k nearest chunks by cosine similarity.
func (s *Store) Search(_ context.Context, key string, query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collection := s.collections[key]
	hits := make([]domain.ScoredChunk, 0, len(collection))
	for _, chunk := range collection {
		hits = append(hits, domain.ScoredChunk{
			Score:    cosineSimilarity(query, chunk.Embedding),
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
