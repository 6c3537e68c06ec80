package crawler

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for HTML stripping.
var (
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	headingOpenTags   = regexp.MustCompile(`(?i)<h([1-6])[^>]*>`)
	headingCloseTags  = regexp.MustCompile(`(?i)</h[1-6]>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	closeBlockTags    = regexp.MustCompile(`(?i)</(p|div|li|tr|blockquote|pre|table|section|article)>`)
	brTags            = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// StripHTML extracts readable text from an HTML page. Heading elements
// are converted to markdown ATX heading lines ("## Title") so downstream
// splitting can use document structure; all other markup is removed.
func StripHTML(content string) string {
	// Remove non-content regions entirely.
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Headings become markdown markers before generic tags are dropped.
	content = headingOpenTags.ReplaceAllStringFunc(content, func(tag string) string {
		m := headingOpenTags.FindStringSubmatch(tag)
		level := 1
		if len(m) > 1 {
			level = int(m[1][0] - '0')
		}
		return "\n" + strings.Repeat("#", level) + " "
	})
	content = headingCloseTags.ReplaceAllString(content, "\n")

	// Block boundaries become newlines.
	content = openBlockElements.ReplaceAllString(content, "\n")
	content = closeBlockTags.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")

	// Drop every remaining tag and decode entities.
	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	return sanitizeText(content)
}

// sanitizeText collapses runs of whitespace and drops empty lines while
// preserving line structure.
func sanitizeText(content string) string {
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
