package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCollectionKey(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "url with scheme and slashes",
			source: "https://example.com/docs/guide",
			want:   "https_example.com_docs_guide",
		},
		{
			name:   "file path",
			source: "/home/user/notes.txt",
			want:   "home_user_notes.txt",
		},
		{
			name:   "allowed characters pass through",
			source: "my-project_v1.2",
			want:   "my-project_v1.2",
		},
		{
			name:   "spaces become underscores",
			source: "a b c",
			want:   "a_b_c",
		},
		{
			name:   "leading and trailing separators stripped",
			source: "__hello__",
			want:   "hello",
		},
		{
			name:   "too short after trimming falls back",
			source: "!?",
			want:   DefaultCollectionKey,
		},
		{
			name:   "empty source falls back",
			source: "",
			want:   DefaultCollectionKey,
		},
		{
			name:   "dots at edges stripped",
			source: "...abc...",
			want:   "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCollectionKey(tt.source))
		})
	}
}

func TestNormalizeCollectionKeyDeterministic(t *testing.T) {
	source := "https://example.com/some/path?q=1"
	assert.Equal(t, NormalizeCollectionKey(source), NormalizeCollectionKey(source))
}

func TestNormalizeCollectionKeyIdempotent(t *testing.T) {
	sources := []string{
		"https://example.com/a/b",
		"/tmp/report final (v2).pdf",
		"plain",
		strings.Repeat("x", 600),
	}
	for _, source := range sources {
		key := NormalizeCollectionKey(source)
		assert.Equal(t, key, NormalizeCollectionKey(key), "source %q", source)
	}
}

func TestNormalizeCollectionKeyTruncates(t *testing.T) {
	key := NormalizeCollectionKey(strings.Repeat("a", 2*MaxKeyLength))
	assert.Len(t, key, MaxKeyLength)
}

func TestNormalizeCollectionKeyEdgesAlphanumeric(t *testing.T) {
	key := NormalizeCollectionKey("https://example.com/path/")
	assert.NotEmpty(t, key)
	assert.True(t, isAlphanumeric(rune(key[0])), "key %q starts with %q", key, key[0])
	assert.True(t, isAlphanumeric(rune(key[len(key)-1])), "key %q ends with %q", key, key[len(key)-1])
}

func TestNormalizeCollectionKeyCollides(t *testing.T) {
	// Distinct sources may map to the same key; the mapping is not
	// injective and callers must not assume it is.
	assert.Equal(t, NormalizeCollectionKey("a/b/c"), NormalizeCollectionKey("a_b_c"))
}
