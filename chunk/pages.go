package chunk

import (
	"strings"

	"github.com/stratalab/strata"
)

// PageSeparator joins page texts into the single document text that the
// splitters operate on. Separator bytes belong to neither page.
const PageSeparator = "\n\n"

// JoinPages concatenates page texts with PageSeparator. Span offsets
// produced by a splitter over the result can be mapped back to pages with
// BindPages.
func JoinPages(pages []strata.Page) string {
	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, PageSeparator)
}

// BindPages attributes each span to the pages whose text it overlaps,
// producing the final chunks. A chunk straddling a page boundary is
// attributed to both pages; a chunk whose range merely touches a boundary
// (zero-length intersection) belongs to the earlier page only. A span that
// covers only separator bytes inherits the nearest preceding page.
//
// pages must be the same sequence, in the same order, that produced the
// joined document text the spans refer to.
func BindPages(pages []strata.Page, spans []Span) []strata.Chunk {
	type pageRange struct {
		number, start, end int
	}
	ranges := make([]pageRange, 0, len(pages))
	off := 0
	for i, p := range pages {
		if i > 0 {
			off += len(PageSeparator)
		}
		ranges = append(ranges, pageRange{p.Number, off, off + len(p.Text)})
		off += len(p.Text)
	}

	chunks := make([]strata.Chunk, 0, len(spans))
	for i, sp := range spans {
		var nums []int
		for _, r := range ranges {
			if sp.Start < r.end && sp.End > r.start {
				nums = append(nums, r.number)
			}
		}
		if len(nums) == 0 {
			// Span inside separator bytes only: nearest preceding page,
			// or the first page when the span precedes all page text.
			prev := 0
			for _, r := range ranges {
				if r.end <= sp.Start {
					prev = r.number
				}
			}
			if prev == 0 && len(ranges) > 0 {
				prev = ranges[0].number
			}
			if prev != 0 {
				nums = []int{prev}
			}
		}
		chunks = append(chunks, strata.Chunk{
			Text:  sp.Text,
			Index: i,
			Pages: nums,
			Start: sp.Start,
			End:   sp.End,
		})
	}
	return chunks
}
