package ribbon

import (
	"regexp"
	"strings"
)

var (
	reConjunction   = regexp.MustCompile(`(?i) and `)
	reCamelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)
)

// NormalizeColour canonicalizes a free-text colour phrase into a lowercase,
// hyphen-delimited key: "Red/White", "Red and White" and "RedWhite" all
// become "red-white". The conjunction is matched in any case so that the
// function stays idempotent once its output has been lowercased.
func NormalizeColour(raw string) string {
	s := strings.ReplaceAll(raw, "/", "-")
	s = reConjunction.ReplaceAllString(s, "-")
	s = reCamelBoundary.ReplaceAllString(s, "$1-$2")
	return strings.TrimSpace(strings.ToLower(s))
}
