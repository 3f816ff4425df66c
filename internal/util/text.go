package util

import (
	"strings"
	"unicode/utf8"
)

// SanitizePostgresText makes a string safe for a Postgres TEXT column.
// Extraction output and entity names arrive from external parsers and can
// carry NUL bytes or broken UTF-8, both of which Postgres rejects.
func SanitizePostgresText(value string) string {
	if utf8.ValidString(value) && !strings.ContainsRune(value, 0) {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}
