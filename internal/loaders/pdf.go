package loaders

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/veldtlabs/querra/internal/core/domain"
)

// loadPDF extracts plain text from a PDF file and splits it by size.
func (r *Registry) loadPDF(path string) ([]domain.Segment, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return r.sizeSegments(path, buf.String()), nil
}
