package domain

// Segment is one raw unit of text produced by a document loader before
// embedding. Metadata carries provenance fields (source, section, line
// bounds) that are preserved through to query results.
type Segment struct {
	// Content is the raw text of the segment.
	Content string

	// Metadata contains scalar provenance fields.
	Metadata map[string]any
}

// Chunk is one embedded, retrievable unit within a collection.
type Chunk struct {
	// ID is unique within the collection. It is derived deterministically
	// from source identity and sequence index so repeated ingestion of
	// identical input is reproducible.
	ID string

	// Text is the content stored alongside the vector and returned from
	// similarity search. This is the raw content, not the enriched
	// embedding input.
	Text string

	// Metadata contains scalar descriptive fields, carried through to
	// query results unchanged.
	Metadata map[string]any

	// Embedding is the vector produced by the embedding service. It is
	// computed once per chunk and never recomputed after a store.
	Embedding []float32
}

// ScoredChunk is a similarity search result: a chunk view plus the
// store's similarity score, best match first.
type ScoredChunk struct {
	Score    float64
	Text     string
	Metadata map[string]any
}

// CodeEntity is one pre-parsed source-code entity submitted with a
// codebase request. The JSON field names match the client parser output.
type CodeEntity struct {
	FilePath    string `json:"file_path"`
	EntityType  string `json:"entity_type"`
	EntityName  string `json:"entity_name"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// IsFunction reports whether the entity is a function. The flag is
// stored as chunk metadata for code collections.
func (e CodeEntity) IsFunction() bool {
	return e.EntityType == "function"
}
