// Package sanitize reduces backend-supplied text to plain text before it is
// drawn in the terminal or echoed by the server.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips all markup from s and unescapes the entities bluemonday
// leaves behind. Control characters other than newline and tab, including
// the C1 range, are dropped so terminal escape sequences cannot pass through.
func Text(s string) string {
	if s == "" {
		return ""
	}
	out := html.UnescapeString(policy.Sanitize(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, out)
}
