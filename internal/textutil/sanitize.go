package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFeature maps a feature key onto a filesystem-safe filename stem.
// Letters, digits, hyphens, and underscores pass through unchanged; every
// other rune becomes an underscore. An empty key falls back to "feature".
func SanitizeFeature(key string) string {
	if key == "" {
		return "feature"
	}
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
