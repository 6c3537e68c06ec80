// Package splitter provides text splitting: fixed-size windows with
// overlap, and markdown heading sections for crawled pages.
package splitter

import "strings"

// Default window parameters, in runes.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Split cuts text into windows of at most size runes, each overlapping
// the previous by overlap runes. Invalid parameters fall back to the
// defaults; an overlap that reaches the window size is reduced so the
// window always advances.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		overlap = size / 4
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	chunks := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// Section is one heading-delimited region of a markdown document.
type Section struct {
	// Heading is the heading text without '#' markers. Empty for
	// content preceding the first heading.
	Heading string

	// Body is the text under the heading, excluding the heading line.
	Body string
}

// Sections splits markdown text at ATX headings (lines starting with
// one to six '#' characters). Content before the first heading becomes
// a section with an empty heading. Sections with empty bodies and no
// heading are dropped.
func Sections(text string) []Section {
	lines := strings.Split(text, "\n")

	var sections []Section
	current := Section{}
	var body []string

	flush := func() {
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Heading != "" || current.Body != "" {
			sections = append(sections, current)
		}
		body = body[:0]
	}

	for _, line := range lines {
		if heading, ok := headingText(line); ok {
			flush()
			current = Section{Heading: heading}
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// headingText returns the text of an ATX heading line, if it is one.
func headingText(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 {
		return "", false
	}
	rest := trimmed[level:]
	if rest != "" && !strings.HasPrefix(rest, " ") {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
