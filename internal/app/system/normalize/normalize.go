// Package normalize trims and canonicalizes raw form and query values.
package normalize

import (
	"strings"
	"unicode"
)

// Name trims surrounding whitespace and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Username trims surrounding whitespace. Case is preserved; uniqueness is
// enforced on the folded form by the store.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims surrounding whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Text trims surrounding whitespace and normalizes line endings to \n.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimFunc(s, unicode.IsSpace)
}
