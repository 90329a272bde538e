package fragment

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reFormFeed   = regexp.MustCompile(`\f`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^[ \t]*[_\-=]{3,}[ \t]*$`)
)

// Clean normalizes line endings and page breaks and drops ruler lines left by
// text converters. Runs of two spaces are kept: some headers depend on them.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, "  ")
	s = reMultiSpace.ReplaceAllString(s, "  ")
	s = reBoxNoise.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

var reCellGap = regexp.MustCompile(`[ \t]*\t[ \t]*| {3,}`)

// FromLayout builds a stream from column-aligned text such as
// `pdftotext -layout` output. Each wide horizontal gap starts a new
// fragment, so one visual row can yield several fragments.
func FromLayout(name, text string) Stream {
	text = reCRLF.ReplaceAllString(text, "\n")
	text = reFormFeed.ReplaceAllString(text, "\n")
	var cells []string
	for _, line := range strings.Split(text, "\n") {
		cells = append(cells, reCellGap.Split(strings.TrimSpace(line), -1)...)
	}
	return FromText(name, strings.Join(cells, "\n"))
}
