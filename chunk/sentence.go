package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations that should NOT be treated as sentence boundaries.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true,
	"prof": true, "sr": true, "jr": true,
	"vs": true, "etc": true, "inc": true, "ltd": true,
	"e.g": true, "i.e": true, "viz": true, "al": true,
	"approx": true, "dept": true, "est": true,
	"fig": true, "no": true, "vol": true,
}

// isAbbreviation checks if the text ending at position dotPos (the '.')
// is a common abbreviation.
func isAbbreviation(text string, dotPos int) bool {
	start := dotPos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		start -= size
	}
	word := strings.ToLower(text[start:dotPos])
	return abbreviations[word]
}

// isDecimalDot checks if the dot at dotPos is part of a number (3.14, $1.50).
func isDecimalDot(text string, dotPos int) bool {
	if dotPos == 0 || dotPos+1 >= len(text) {
		return false
	}
	prev := text[dotPos-1]
	next := text[dotPos+1]
	return prev >= '0' && prev <= '9' && next >= '0' && next <= '9'
}

// sentenceBoundaries returns byte positions suitable for splitting text at
// sentence boundaries. Handles ASCII punctuation (.!?) with abbreviation and
// decimal number awareness, plus CJK sentence-ending punctuation (。！？).
func sentenceBoundaries(text string) []int {
	var boundaries []int
	runes := []rune(text)
	n := len(runes)

	byteOffsets := make([]int, n+1)
	off := 0
	for i, r := range runes {
		byteOffsets[i] = off
		off += utf8.RuneLen(r)
	}
	byteOffsets[n] = off

	for i := 0; i < n; i++ {
		r := runes[i]

		// CJK sentence-ending punctuation is always a boundary after.
		if r == '。' || r == '！' || r == '？' {
			boundaries = append(boundaries, byteOffsets[i+1])
			continue
		}

		if r != '.' && r != '!' && r != '?' {
			continue
		}

		dotPos := byteOffsets[i]
		if r == '.' && isDecimalDot(text, dotPos) {
			continue
		}
		if r == '.' && isAbbreviation(text, dotPos) {
			continue
		}

		// Need whitespace or newline after the punctuation.
		if i+1 < n && (runes[i+1] == ' ' || runes[i+1] == '\n') {
			if runes[i+1] == '\n' {
				boundaries = append(boundaries, byteOffsets[i+1])
			} else if i+2 < n && unicode.IsUpper(runes[i+2]) {
				boundaries = append(boundaries, byteOffsets[i+2])
			} else if i+2 >= n {
				boundaries = append(boundaries, byteOffsets[n])
			}
		}
	}
	return boundaries
}

// sentenceSpans splits text into contiguous sentence ranges covering the
// whole input. Boundary bytes (trailing spaces) stay attached to the
// preceding sentence so that concatenating all spans reproduces the input.
func sentenceSpans(text string) []Span {
	boundaries := sentenceBoundaries(text)
	var spans []Span
	start := 0
	for _, b := range boundaries {
		if b <= start || b >= len(text) {
			continue
		}
		spans = append(spans, Span{Text: text[start:b], Start: start, End: b})
		start = b
	}
	if start < len(text) {
		spans = append(spans, Span{Text: text[start:], Start: start, End: len(text)})
	}
	return spans
}
