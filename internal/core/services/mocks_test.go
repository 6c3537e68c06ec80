package services

import (
	"context"
	"fmt"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing. Vectors
// are derived from text length so distinct texts embed differently but
// deterministically.
type mockEmbedder struct {
	embedCalls int
	batchCalls int
	batchTexts [][]string
	embedErr   error
	batchErr   error

	// shortBy makes EmbedBatch return that many fewer vectors than
	// inputs, simulating a misbehaving provider.
	shortBy int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return vectorFor(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	m.batchTexts = append(m.batchTexts, texts)
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	n := len(texts) - m.shortBy
	if n < 0 {
		n = 0
	}
	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		vectors[i] = vectorFor(texts[i])
	}
	return vectors, nil
}

func (m *mockEmbedder) ModelName() string            { return "mock-model" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func vectorFor(text string) []float32 {
	return []float32{float32(len(text)), 1, 0}
}

// mockStore implements driven.VectorStore for testing, tracking call
// counts on top of simple in-memory collections.
type mockStore struct {
	collections map[string][]domain.Chunk
	upsertCalls int
	countErr    error
	upsertErr   error
	searchErr   error
	ensureErr   error
}

func newMockStore() *mockStore {
	return &mockStore{collections: make(map[string][]domain.Chunk)}
}

func (m *mockStore) EnsureCollection(_ context.Context, key string) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	if _, ok := m.collections[key]; !ok {
		m.collections[key] = nil
	}
	return nil
}

func (m *mockStore) Count(_ context.Context, key string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.collections[key]), nil
}

func (m *mockStore) Upsert(_ context.Context, key string, chunks []domain.Chunk) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.collections[key] = append(m.collections[key], chunks...)
	return nil
}

func (m *mockStore) Search(_ context.Context, key string, _ []float32, k int) ([]domain.ScoredChunk, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	chunks := m.collections[key]
	hits := make([]domain.ScoredChunk, 0, len(chunks))
	for i, chunk := range chunks {
		if k > 0 && i >= k {
			break
		}
		hits = append(hits, domain.ScoredChunk{
			Score:    1.0 - float64(i)*0.1,
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
		})
	}
	return hits, nil
}

func (m *mockStore) Close() error { return nil }

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	segments  []domain.Segment
	loadCalls int
	loadErr   error
}

func (m *mockLoader) Load(_ context.Context, source, _ string) ([]domain.Segment, error) {
	m.loadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.segments != nil {
		return m.segments, nil
	}
	return []domain.Segment{
		{Content: "alpha content", Metadata: map[string]any{"source": source}},
		{Content: "beta content", Metadata: map[string]any{"source": source}},
	}, nil
}

// mockFetcher implements driven.PageFetcher for testing.
type mockFetcher struct {
	pages      map[string]string
	fetchCalls int
	fetchErr   error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (string, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return "", m.fetchErr
	}
	page, ok := m.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

// Interface checks.
var (
	_ driven.EmbeddingService = (*mockEmbedder)(nil)
	_ driven.VectorStore      = (*mockStore)(nil)
	_ driven.DocumentLoader   = (*mockLoader)(nil)
	_ driven.PageFetcher      = (*mockFetcher)(nil)
)
