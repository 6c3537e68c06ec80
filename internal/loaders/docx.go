package loaders

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/veldtlabs/querra/internal/core/domain"
)

// documentXML mirrors the paragraph/run/text structure of
// word/document.xml inside a DOCX archive.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// loadDOCX extracts paragraph text from a DOCX file and splits it by
// size.
func (r *Registry) loadDOCX(path string) ([]domain.Segment, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer archive.Close()

	text, err := extractDOCXText(&archive.Reader)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}
	return r.sizeSegments(path, text), nil
}

// extractDOCXText reads word/document.xml and joins paragraph text.
func extractDOCXText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", err
		}

		var sb strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				sb.WriteString("\n")
			}
			for _, run := range para.Runs {
				for _, text := range run.Text {
					sb.WriteString(text.Content)
				}
			}
		}
		return sb.String(), nil
	}
	return "", fmt.Errorf("no word/document.xml in archive")
}
