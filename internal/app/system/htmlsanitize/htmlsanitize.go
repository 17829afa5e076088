// Package htmlsanitize cleans user-submitted post and comment text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows the usual formatting, links and images; scripts, event
	// handlers, iframes, forms and unsafe URL schemes are removed.
	ugc = newUGCPolicy()

	// strict removes every tag; used to find the visible text.
	strict = bluemonday.StrictPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "mark")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th")
	return p
}

// Sanitize returns s with anything unsafe removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// IsBlank reports whether s has no visible text once all markup is removed.
func IsBlank(s string) bool {
	return strings.TrimSpace(strict.Sanitize(s)) == ""
}

// Excerpt returns the first n characters of the visible text of s, with
// whitespace collapsed.
func Excerpt(s string, n int) string {
	plain := strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
	runes := []rune(plain)
	if len(runes) <= n {
		return plain
	}
	return string(runes[:n])
}
