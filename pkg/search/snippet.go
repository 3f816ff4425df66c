package search

import (
	"strings"
	"unicode/utf8"
)

// snippetWidth is the approximate character budget for a result snippet.
const snippetWidth = 160

// buildSnippet extracts a window of the document text around the first
// occurrence of any query token. The window is trimmed to word boundaries
// where possible and cut edges are marked with ellipses. An empty string
// means no text was available.
func buildSnippet(text string, queryTokens []string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)

	hit := -1
	for _, tok := range queryTokens {
		if idx := strings.Index(lower, tok); idx >= 0 && (hit < 0 || idx < hit) {
			hit = idx
		}
	}
	if hit < 0 {
		hit = 0
	}

	// Place the hit about a quarter into the window so some leading
	// context survives.
	start := hit - snippetWidth/4
	if start < 0 {
		start = 0
	}
	end := start + snippetWidth
	if end > len(trimmed) {
		end = len(trimmed)
		start = end - snippetWidth
		if start < 0 {
			start = 0
		}
	}

	// Never cut inside a multi-byte rune.
	for start > 0 && !utf8.RuneStart(trimmed[start]) {
		start--
	}
	for end < len(trimmed) && !utf8.RuneStart(trimmed[end]) {
		end++
	}

	// Widen cut edges to word boundaries when a space is in reach.
	if start > 0 {
		if idx := strings.IndexByte(trimmed[start:end], ' '); idx >= 0 && start+idx+1 <= hit {
			start += idx + 1
		}
	}
	if end < len(trimmed) {
		if idx := strings.LastIndexByte(trimmed[start:end], ' '); idx > 0 {
			end = start + idx
		}
	}

	snippet := strings.TrimSpace(trimmed[start:end])
	if snippet == "" {
		return ""
	}
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(trimmed) {
		snippet += "..."
	}
	return snippet
}
