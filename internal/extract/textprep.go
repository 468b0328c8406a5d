package extract

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)
	reAnySpace   = regexp.MustCompile(`\s+`)
)

// Prep collapses noisy whitespace and strips common OCR artifacts such as
// box-drawing rules. Conservative: keeps line breaks; collapses >2 newlines
// into a single blank line. Intended for OCR output before extraction; the
// extractor itself still preserves whatever it is given as raw_text.
func Prep(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// compact flattens all whitespace runs (including line breaks) to single
// spaces. Anchor scanning runs over the compacted text so that OCR line-break
// placement never changes what a field captures.
func compact(s string) string {
	return strings.TrimSpace(reAnySpace.ReplaceAllString(s, " "))
}
