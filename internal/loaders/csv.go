package loaders

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/veldtlabs/querra/internal/core/domain"
)

// loadCSV reads a CSV file and renders each record as "header: value"
// lines, one segment per row, so individual rows are retrievable.
func (r *Registry) loadCSV(path string) ([]domain.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	segments := make([]domain.Segment, 0, len(records)-1)
	for rowNum, record := range records[1:] {
		var sb strings.Builder
		for i, value := range record {
			name := fmt.Sprintf("column_%d", i)
			if i < len(header) {
				name = header[i]
			}
			fmt.Fprintf(&sb, "%s: %s\n", name, value)
		}

		segments = append(segments, domain.Segment{
			Content: sb.String(),
			Metadata: map[string]any{
				"source": path,
				"row":    rowNum + 1,
			},
		})
	}
	return segments, nil
}
