package driven

import (
	"context"

	"github.com/veldtlabs/querra/internal/core/domain"
)

// DocumentLoader resolves a source identifier into ordered text segments
// ready for embedding. Implementations own the chunking policy (maximum
// chunk length and overlap are configured at construction); the core
// pipeline does not re-chunk loader output.
type DocumentLoader interface {
	// Load fetches and splits the source. kind is a document kind hint
	// (webpage|pdf|txt|csv|docx|md|doc); unknown kinds are treated as
	// plain text.
	Load(ctx context.Context, source, kind string) ([]domain.Segment, error)
}

// PageFetcher retrieves a remote page and returns its readable text with
// markdown-style heading markers preserved, so the agent path can split
// by heading before splitting by size.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
