package loaders

import (
	"fmt"
	"os"

	"github.com/veldtlabs/querra/internal/core/domain"
)

// loadMarkdown reads a markdown file and splits it by heading, then by
// size, so section structure survives into segment metadata.
func (r *Registry) loadMarkdown(path string) ([]domain.Segment, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return r.sectionSegments(path, string(content)), nil
}
