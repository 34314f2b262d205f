// Package validate holds the pure input checks shared by every route
// handler. Validators never mutate their input; they report whether the
// value is acceptable and the caller decides the resulting error.
package validate

import (
	"regexp"
	"strings"
)

// idPattern is the fixed-length hyphenated hex shape of the platform's
// row identifiers.
var idPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// emailPattern checks shape only: one @, no spaces, a dotted domain.
// Deliverability is the identity service's problem, not ours.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxEmailLen = 254

// ID reports whether s is a well-formed row identifier.
func ID(s string) bool {
	return idPattern.MatchString(s)
}

// Email reports whether s looks like an email address and fits the
// length bound.
func Email(s string) bool {
	return len(s) <= maxEmailLen && emailPattern.MatchString(s)
}

// StringLen reports whether s falls within [min, max] bytes.
func StringLen(s string, min, max int) bool {
	return len(s) >= min && len(s) <= max
}

// IntRange reports whether n falls within [min, max].
func IntRange(n, min, max int) bool {
	return n >= min && n <= max
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML escapes the five HTML-significant characters in free text
// before it is echoed back in a response or a log line.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
