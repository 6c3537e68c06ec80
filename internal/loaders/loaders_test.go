package loaders

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher implements driven.PageFetcher for testing.
type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestEffectiveKind(t *testing.T) {
	tests := []struct {
		source string
		kind   string
		want   string
	}{
		{"https://example.com/page", "", "webpage"},
		{"http://example.com/page", "doc", "webpage"},
		{"notes.md", "", "md"},
		{"notes.markdown", "doc", "md"},
		{"data.csv", "txt", "csv"},
		{"report.docx", "", "docx"},
		{"paper.pdf", "", "pdf"},
		{"plain.log", "", "txt"},
		{"anything", "pdf", "pdf"},
		{"https://example.com/x", "md", "md"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, effectiveKind(tt.source, tt.kind),
			"source %q kind %q", tt.source, tt.kind)
	}
}

func TestLoadPlaintext(t *testing.T) {
	path := writeFile(t, "notes.txt", "some plain text content")
	registry := New(nil, 0, 0)

	segments, err := registry.Load(context.Background(), path, "")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "some plain text content", segments[0].Content)
	assert.Equal(t, path, segments[0].Metadata["source"])
}

func TestLoadPlaintextSplitsLargeFiles(t *testing.T) {
	content := make([]byte, 0, 2500)
	for i := 0; i < 2500; i++ {
		content = append(content, 'a')
	}
	path := writeFile(t, "big.txt", string(content))
	registry := New(nil, 1000, 200)

	segments, err := registry.Load(context.Background(), path, "")
	require.NoError(t, err)
	assert.Greater(t, len(segments), 1)
	for _, seg := range segments {
		assert.LessOrEqual(t, len(seg.Content), 1000)
	}
}

func TestLoadMarkdownKeepsSections(t *testing.T) {
	path := writeFile(t, "guide.md", `# Intro

Welcome text.

## Usage

Run the thing.
`)
	registry := New(nil, 0, 0)

	segments, err := registry.Load(context.Background(), path, "")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "Intro", segments[0].Metadata["section"])
	assert.Contains(t, segments[0].Content, "Welcome text.")
	assert.Equal(t, "Usage", segments[1].Metadata["section"])
	assert.Contains(t, segments[1].Content, "Run the thing.")
}

func TestLoadCSVOneSegmentPerRow(t *testing.T) {
	path := writeFile(t, "people.csv", "name,city\nada,london\ngrace,new york\n")
	registry := New(nil, 0, 0)

	segments, err := registry.Load(context.Background(), path, "")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "name: ada\ncity: london\n", segments[0].Content)
	assert.Equal(t, 1, segments[0].Metadata["row"])
	assert.Equal(t, "name: grace\ncity: new york\n", segments[1].Content)
	assert.Equal(t, 2, segments[1].Metadata["row"])
}

func TestLoadWebpage(t *testing.T) {
	fetcher := &fakeFetcher{text: "## Title\npage body text"}
	registry := New(fetcher, 0, 0)

	segments, err := registry.Load(context.Background(), "https://example.com/page", "")
	require.NoError(t, err)
	require.NotEmpty(t, segments)
	assert.Equal(t, "Title", segments[0].Metadata["section"])
	assert.Contains(t, segments[0].Content, "page body text")
}

func TestLoadWebpageWithoutFetcher(t *testing.T) {
	registry := New(nil, 0, 0)

	_, err := registry.Load(context.Background(), "https://example.com/page", "")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	registry := New(nil, 0, 0)

	_, err := registry.Load(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), "")
	assert.Error(t, err)
}
