package docproc

import (
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(` {2,}`)
	blankRuns  = regexp.MustCompile(`\n{3,}`)
)

// Normalize canonicalises raw text into line-oriented form: CRLF→LF,
// tabs and non-breaking spaces to regular spaces, interior space runs
// collapsed, trailing whitespace stripped per line, runs of blank lines
// collapsed to a single blank line, and the whole document trimmed.
//
// Line trimming happens before the blank-line collapse so that lines made
// blank by trimming still collapse; that ordering is what makes Normalize
// idempotent. Empty input yields empty output.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "\u00a0", " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = multiSpace.ReplaceAllString(line, " ")
		lines[i] = strings.TrimRight(line, " ")
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
