// Package sqlite provides an embedded, persistent vector store backed
// by SQLite. Embeddings are stored as little-endian float32 blobs and
// searched with brute-force cosine similarity, which is adequate for
// the per-source collection sizes this server handles.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	collection_key TEXT NOT NULL,
	chunk_id       TEXT NOT NULL,
	content        TEXT NOT NULL,
	metadata       TEXT NOT NULL,
	embedding      BLOB NOT NULL,
	PRIMARY KEY (collection_key, chunk_id)
);
CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection_key);
`

// Store persists collections in one SQLite database file.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and ensures the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// EnsureCollection is a no-op: collections exist implicitly as soon as
// a chunk row references them.
func (s *Store) EnsureCollection(_ context.Context, _ string) error {
	return nil
}

// Count returns the number of chunks stored under key.
func (s *Store) Count(ctx context.Context, key string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection_key = ?", key).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count collection %s: %w", key, err)
	}
	return count, nil
}

// Upsert writes the batch in one transaction so a partial write rolls
// back rather than leaving the collection half-populated.
func (s *Store) Upsert(ctx context.Context, key string, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (collection_key, chunk_id, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadata, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", chunk.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, key, chunk.ID, chunk.Text, string(metadata), encodeVector(chunk.Embedding)); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Search loads the collection's vectors and returns the k most cosine-
// similar chunks, best match first.
func (s *Store) Search(ctx context.Context, key string, query []float32, k int) ([]domain.ScoredChunk, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT content, metadata, embedding FROM chunks WHERE collection_key = ?", key)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", key, err)
	}
	defer rows.Close()

	var hits []domain.ScoredChunk
	for rows.Next() {
		var content, metadataJSON string
		var blob []byte
		if err := rows.Scan(&content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}

		hits = append(hits, domain.ScoredChunk{
			Score:    cosineSimilarity(query, decodeVector(blob)),
			Text:     content,
			Metadata: metadata,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection %s: %w", key, err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// encodeVector serialises a float32 vector as a little-endian blob.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector deserialises a little-endian blob into a float32 vector.
func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

// cosineSimilarity computes the cosine of the angle between two vectors.
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
