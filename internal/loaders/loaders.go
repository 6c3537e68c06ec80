// Package loaders implements the document collaborator: it resolves a
// source identifier (file path or URL) and a document kind hint into
// ordered, size-split text segments with provenance metadata.
//
// Chunking policy (window size and overlap) lives here, not in the
// ingestion pipeline.
package loaders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/core/ports/driven"
	"github.com/veldtlabs/querra/internal/logger"
	"github.com/veldtlabs/querra/internal/splitter"
)

// Ensure Registry implements the interface.
var _ driven.DocumentLoader = (*Registry)(nil)

// Registry dispatches loading by document kind and splits the loaded
// text into embedding-sized segments.
type Registry struct {
	fetcher      driven.PageFetcher
	chunkSize    int
	chunkOverlap int
}

// New creates a loader registry. fetcher handles the webpage kind; a
// nil fetcher disables it. Non-positive chunk parameters fall back to
// the splitter defaults.
func New(fetcher driven.PageFetcher, chunkSize, chunkOverlap int) *Registry {
	if chunkSize <= 0 {
		chunkSize = splitter.DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = splitter.DefaultOverlap
	}
	return &Registry{fetcher: fetcher, chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Load resolves the source into split segments. Unknown kinds and the
// generic "doc" kind are resolved by file extension, defaulting to
// plain text.
func (r *Registry) Load(ctx context.Context, source, kind string) ([]domain.Segment, error) {
	switch effectiveKind(source, kind) {
	case "webpage":
		return r.loadWebpage(ctx, source)
	case "md":
		return r.loadMarkdown(source)
	case "csv":
		return r.loadCSV(source)
	case "docx":
		return r.loadDOCX(source)
	case "pdf":
		return r.loadPDF(source)
	default:
		return r.loadPlaintext(source)
	}
}

// effectiveKind resolves the generic kinds by extension or URL scheme.
func effectiveKind(source, kind string) string {
	switch kind {
	case "", "doc", "txt":
		// Resolve below.
	default:
		return kind
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return "webpage"
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".md", ".markdown":
		return "md"
	case ".csv":
		return "csv"
	case ".docx":
		return "docx"
	case ".pdf":
		return "pdf"
	default:
		return "txt"
	}
}

// loadWebpage fetches a page and splits it by heading, then by size.
func (r *Registry) loadWebpage(ctx context.Context, url string) ([]domain.Segment, error) {
	if r.fetcher == nil {
		return nil, fmt.Errorf("webpage loading is not configured")
	}
	text, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return r.sectionSegments(url, text), nil
}

// loadPlaintext reads a file and splits it by size only.
func (r *Registry) loadPlaintext(path string) ([]domain.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.sizeSegments(path, string(content)), nil
}

// sectionSegments splits text by markdown heading, then by size, and
// labels each segment with its section heading.
func (r *Registry) sectionSegments(source, text string) []domain.Segment {
	var segments []domain.Segment
	for _, section := range splitter.Sections(text) {
		for _, chunk := range splitter.Split(section.Body, r.chunkSize, r.chunkOverlap) {
			segments = append(segments, domain.Segment{
				Content: chunk,
				Metadata: map[string]any{
					"source":  source,
					"section": section.Heading,
				},
			})
		}
	}
	logger.Debug("split %s into %d segments", source, len(segments))
	return segments
}

// sizeSegments splits text by size only.
func (r *Registry) sizeSegments(source, text string) []domain.Segment {
	chunks := splitter.Split(text, r.chunkSize, r.chunkOverlap)
	segments := make([]domain.Segment, 0, len(chunks))
	for _, chunk := range chunks {
		segments = append(segments, domain.Segment{
			Content:  chunk,
			Metadata: map[string]any{"source": source},
		})
	}
	logger.Debug("split %s into %d segments", source, len(segments))
	return segments
}
