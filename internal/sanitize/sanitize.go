// Package sanitize holds the pure text transforms applied to user input
// before it reaches the store.
package sanitize

import (
	"html"
	"strings"
	"unicode"
)

const maxIdentifierLen = 64

// Content makes message text safe to echo back into HTML contexts:
// control characters (except newline and tab) are stripped, markup is
// entity-escaped and surrounding whitespace trimmed.
func Content(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return html.EscapeString(strings.TrimSpace(b.String()))
}

// Identifier validates an opaque id (chat, message, profile or client
// message id). Returns the empty string if the input is malformed, so
// callers can reject injection attempts via identifiers.
func Identifier(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxIdentifierLen {
		return ""
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return ""
		}
	}
	return s
}
