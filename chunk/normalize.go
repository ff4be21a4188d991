package chunk

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize cleans raw page text before splitting: NFC normalization,
// removal of non-printable control characters, collapsing of horizontal
// whitespace runs, and capping of consecutive blank lines at one so that
// paragraph boundaries (\n\n) survive for the recursive splitter.
// Pure; empty input returns empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := norm.NFC.String(raw)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\r':
			// dropped; \r\n collapses to \n
		case unicode.IsControl(r) || r == '�':
			// strip other control characters and replacement runes
		default:
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	var out strings.Builder
	out.Grow(len(s))
	blanks := 0
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			if out.Len() > 0 {
				blanks++
			}
			continue
		}
		if blanks > 0 {
			out.WriteByte('\n')
			out.WriteByte('\n')
		} else if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(strings.Join(fields, " "))
		blanks = 0
	}
	return out.String()
}
