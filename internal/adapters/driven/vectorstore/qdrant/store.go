// Package qdrant provides a vector store adapter backed by a Qdrant
// server, as a minimal REST client. One querra collection maps to one
// Qdrant collection using cosine distance.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 15 * time.Second

// pointNamespace namespaces the deterministic point UUIDs derived from
// chunk ids. Qdrant requires UUID or integer point ids, so the chunk id
// is hashed into a stable UUID and kept verbatim in the payload.
var pointNamespace = uuid.MustParse("9a7312a4-5f6e-4df1-a2c3-8be07d94f20e")

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant base URL, e.g. http://localhost:6333 (required).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// VectorSize is the embedding dimension used when creating
	// collections (required).
	VectorSize int

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration
}

// Store is a REST client to one Qdrant server.
type Store struct {
	url        string
	apiKey     string
	vectorSize int
	client     *http.Client
}

// New creates a Qdrant store.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant: URL is required")
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("qdrant: vector size is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		vectorSize: cfg.VectorSize,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// EnsureCollection creates the collection if missing. Qdrant returns OK
// for an existing collection with the same schema.
func (s *Store) EnsureCollection(ctx context.Context, key string) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.vectorSize,
			"distance": "Cosine",
		},
	}
	return s.doJSON(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", key), body, nil)
}

// Count returns the exact number of points in the collection. A missing
// collection surfaces as an error, which callers treat as "absent".
func (s *Store) Count(ctx context.Context, key string) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/count", key),
		map[string]any{"exact": true}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Upsert writes the batch in one call with wait=true so the write is
// visible before the request completes.
func (s *Store) Upsert(ctx context.Context, key string, chunks []domain.Chunk) error {
	points := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]any{
			"chunk_id": chunk.ID,
			"text":     chunk.Text,
		}
		for k, v := range chunk.Metadata {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      uuid.NewSHA1(pointNamespace, []byte(chunk.ID)).String(),
			"vector":  chunk.Embedding,
			"payload": payload,
		}
	}

	return s.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s/points?wait=true", key),
		map[string]any{"points": points}, nil)
}

// Search runs a k-nearest-neighbour search and maps payloads back to
// scored chunks.
func (s *Store) Search(ctx context.Context, key string, query []float32, k int) ([]domain.ScoredChunk, error) {
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := s.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/search", key),
		map[string]any{
			"vector":       query,
			"limit":        k,
			"with_payload": true,
		}, &resp)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.ScoredChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		text, _ := r.Payload["text"].(string)
		metadata := make(map[string]any, len(r.Payload))
		for k, v := range r.Payload {
			if k == "text" || k == "chunk_id" {
				continue
			}
			metadata[k] = v
		}
		hits = append(hits, domain.ScoredChunk{
			Score:    r.Score,
			Text:     text,
			Metadata: metadata,
		})
	}
	return hits, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// doJSON sends a JSON request and optionally decodes a JSON response.
func (s *Store) doJSON(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("qdrant: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("qdrant: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant: %s %s: status %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("qdrant: decode response: %w", err)
		}
	} else {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
	}
	return nil
}
