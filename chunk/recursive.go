package chunk

import (
	"context"
	"unicode/utf8"
)

// Separator levels, coarsest first. When a level produces no cuts inside an
// oversized range, the splitter falls through to the next finer level.
const (
	levelParagraph = iota
	levelSentence
	levelWord
	levelRune
)

// span is an internal contiguous byte range. Segments produced by descend
// are contiguous (each segment starts where the previous one ends), which is
// what guarantees gap-free coverage of the input.
type span struct {
	start, end int
}

// RecursiveSplitter implements StrategyRecursive: recursively split on
// paragraph, sentence, word, and rune boundaries, then greedily merge
// pieces up to ChunkSize bytes, carrying an Overlap-byte tail of each chunk
// into the next. A single atomic piece that cannot fit under ChunkSize even
// at rune level is emitted oversized rather than failing.
type RecursiveSplitter struct {
	size    int
	overlap int
}

var _ Splitter = (*RecursiveSplitter)(nil)

// NewRecursive creates a RecursiveSplitter from cfg. cfg is assumed valid;
// use NewSplitter to validate.
func NewRecursive(cfg Config) *RecursiveSplitter {
	return &RecursiveSplitter{size: cfg.ChunkSize, overlap: cfg.Overlap}
}

// Split partitions text into spans covering the full input.
func (rs *RecursiveSplitter) Split(_ context.Context, text string) ([]Span, error) {
	if text == "" {
		return nil, nil
	}
	segs := rs.descend(text, 0, len(text), levelParagraph)
	return rs.assemble(text, segs), nil
}

// descend splits [start, end) into contiguous segments no larger than
// rs.size where possible, trying separator levels from lv downward.
func (rs *RecursiveSplitter) descend(text string, start, end, lv int) []span {
	if end-start <= rs.size {
		return []span{{start, end}}
	}
	for ; lv <= levelRune; lv++ {
		cuts := cutsAt(text, start, end, lv, rs.size)
		if len(cuts) == 0 {
			continue
		}
		var segs []span
		prev := start
		for _, c := range append(cuts, end) {
			if c <= prev {
				continue
			}
			piece := span{prev, c}
			prev = c
			if piece.end-piece.start <= rs.size || lv == levelRune {
				segs = append(segs, piece)
			} else {
				segs = append(segs, rs.descend(text, piece.start, piece.end, lv+1)...)
			}
		}
		return segs
	}
	// No separator at any level: an atomic oversized fragment.
	return []span{{start, end}}
}

// assemble greedily merges contiguous segments up to rs.size bytes per
// chunk. Each chunk after the first extends backward over the previous
// chunk's tail by up to rs.overlap bytes; the extension shrinks when the
// chunk's own first segment would not fit within rs.size otherwise, so the
// size bound holds except for atomic oversized fragments.
func (rs *RecursiveSplitter) assemble(text string, segs []span) []Span {
	var out []Span
	i := 0
	for i < len(segs) {
		seg := segs[i]
		start := seg.start
		if len(out) > 0 && rs.overlap > 0 {
			prev := out[len(out)-1]
			o := prev.End - rs.overlap
			if seg.end-o > rs.size {
				o = seg.end - rs.size
			}
			if o > seg.start {
				o = seg.start
			}
			if o <= prev.Start {
				o = prev.Start + 1
			}
			for o < seg.start && !utf8.RuneStart(text[o]) {
				o++
			}
			start = o
		}
		end := seg.end
		i++
		for i < len(segs) && segs[i].end-start <= rs.size {
			end = segs[i].end
			i++
		}
		out = append(out, Span{Text: text[start:end], Start: start, End: end})
	}
	return out
}

// cutsAt returns boundary positions strictly inside (start, end) for the
// given separator level.
func cutsAt(text string, start, end, lv, size int) []int {
	switch lv {
	case levelParagraph:
		return paragraphCuts(text, start, end)
	case levelSentence:
		rel := sentenceBoundaries(text[start:end])
		cuts := make([]int, 0, len(rel))
		for _, b := range rel {
			if p := start + b; p > start && p < end {
				cuts = append(cuts, p)
			}
		}
		return cuts
	case levelWord:
		return wordCuts(text, start, end)
	default:
		return runeCuts(text, start, end, size)
	}
}

// paragraphCuts marks the position after each run of two or more newlines.
func paragraphCuts(text string, start, end int) []int {
	var cuts []int
	i := start
	for i < end-1 {
		if text[i] == '\n' && text[i+1] == '\n' {
			j := i
			for j < end && text[j] == '\n' {
				j++
			}
			if j < end {
				cuts = append(cuts, j)
			}
			i = j
		} else {
			i++
		}
	}
	return cuts
}

// wordCuts marks the start of each word after the first.
func wordCuts(text string, start, end int) []int {
	var cuts []int
	for p := start + 1; p < end; p++ {
		if isSpaceByte(text[p-1]) && !isSpaceByte(text[p]) {
			cuts = append(cuts, p)
		}
	}
	return cuts
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}

// runeCuts marks a cut every size bytes, snapped forward to rune starts.
func runeCuts(text string, start, end, size int) []int {
	var cuts []int
	p := start + size
	for p < end {
		for p < end && !utf8.RuneStart(text[p]) {
			p++
		}
		if p >= end {
			break
		}
		cuts = append(cuts, p)
		p += size
	}
	return cuts
}
