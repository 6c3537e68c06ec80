package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/logger"
)

// embedInput pairs the enriched text submitted for embedding with the
// raw text and metadata that are stored.
type embedInput struct {
	id        string
	embedText string
	text      string
	metadata  map[string]any
}

// Ingestor runs the ingestion pipeline: enrich segments with provenance,
// embed them in one batched call, and batch-write the result to the
// vector store under a collection key.
//
// Ingestor does not guard against concurrent ingestion of the same key;
// the transport loop serialises requests, so at most one ingestion runs
// per process at a time.
type Ingestor struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewIngestor creates an ingestor over the given collaborators.
func NewIngestor(embedder driven.EmbeddingService, store driven.VectorStore) *Ingestor {
	return &Ingestor{embedder: embedder, store: store}
}

// IngestSegments embeds and stores loader segments under key.
func (g *Ingestor) IngestSegments(ctx context.Context, key string, segments []domain.Segment) error {
	if len(segments) == 0 {
		return domain.ErrEmptySource
	}

	inputs := make([]embedInput, 0, len(segments))
	for i, seg := range segments {
		source := metadataString(seg.Metadata, "source")
		label := metadataString(seg.Metadata, "section")
		if label == "" {
			label = "chunk"
		}

		// The embedding input combines provenance with content so the
		// vector reflects both.
		embedText := fmt.Sprintf("Source: %s\nContent:\n%s", source, seg.Content)

		inputs = append(inputs, embedInput{
			id:        chunkID(source, label, i),
			embedText: embedText,
			text:      seg.Content,
			metadata:  seg.Metadata,
		})
	}

	return g.ingest(ctx, key, inputs)
}

// IngestCodeEntities embeds and stores pre-parsed code entities under key.
func (g *Ingestor) IngestCodeEntities(ctx context.Context, key string, entities []domain.CodeEntity) error {
	if len(entities) == 0 {
		return domain.ErrEmptySource
	}

	inputs := make([]embedInput, 0, len(entities))
	for i, ent := range entities {
		embedText := fmt.Sprintf(
			"File Path: %s\nEntity Type: %s\nEntity Name: %s\nStart Line: %d\nEnd Line: %d\nDescription: %s\nCode:\n%s",
			ent.FilePath, ent.EntityType, ent.EntityName,
			ent.StartLine, ent.EndLine, ent.Description, ent.Code,
		)

		inputs = append(inputs, embedInput{
			id:        chunkID(ent.FilePath, ent.EntityName, i),
			embedText: embedText,
			text:      ent.Code,
			metadata: map[string]any{
				"file_path":   ent.FilePath,
				"entity_type": ent.EntityType,
				"entity_name": ent.EntityName,
				"start_line":  ent.StartLine,
				"end_line":    ent.EndLine,
				"description": ent.Description,
				"is_function": ent.IsFunction(),
			},
		})
	}

	return g.ingest(ctx, key, inputs)
}

// ingest embeds all inputs in a single batched call, verifies batch
// integrity, and writes the batch to the store. Embedding happens before
// the collection is touched, so a failed batch leaves no zero-row
// collection behind and the existence check stays accurate on retry.
func (g *Ingestor) ingest(ctx context.Context, key string, inputs []embedInput) error {
	texts := make([]string, len(inputs))
	for i := range inputs {
		texts[i] = inputs[i].embedText
	}

	logger.Info("embedding %d chunks for collection %s", len(texts), key)
	vectors, err := g.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrBatchMismatch, len(vectors), len(texts))
	}

	chunks := make([]domain.Chunk, len(inputs))
	for i := range inputs {
		chunks[i] = domain.Chunk{
			ID:        inputs[i].id,
			Text:      inputs[i].text,
			Metadata:  inputs[i].metadata,
			Embedding: vectors[i],
		}
	}

	if err := g.store.EnsureCollection(ctx, key); err != nil {
		return fmt.Errorf("ensure collection %s: %w", key, err)
	}
	if err := g.store.Upsert(ctx, key, chunks); err != nil {
		return fmt.Errorf("upsert %d chunks into %s: %w", len(chunks), key, err)
	}

	logger.Info("stored %d chunks in collection %s", len(chunks), key)
	return nil
}

// chunkID derives the deterministic id {source}_{label}_{index}.
func chunkID(source, label string, index int) string {
	return fmt.Sprintf("%s_%s_%d", source, label, index)
}

// metadataString reads a string field from segment metadata.
func metadataString(m map[string]any, field string) string {
	if m == nil {
		return ""
	}
	s, _ := m[field].(string)
	return strings.TrimSpace(s)
}
