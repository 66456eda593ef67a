// Package htmlsanitize strips markup from free-text fields such as project
// names and descriptions before they are persisted.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes every HTML element from s (dropping script and style bodies)
// and returns the remaining text with entities decoded and whitespace trimmed.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	lt := strings.Index(s, "<")
	return lt < 0 || !strings.Contains(s[lt:], ">")
}
