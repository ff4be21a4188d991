package ingest

import (
	"strings"

	"github.com/stratalab/strata"
)

// Extractor converts raw document bytes into ordered pages of plain text.
// The pipeline performs no OCR or layout analysis; extractors are the
// boundary to whatever produced the document.
type Extractor interface {
	ExtractPages(content []byte) ([]strata.Page, error)
}

// PlainTextExtractor treats content as UTF-8 text. Form feed characters
// mark page breaks; without any, the document is a single page.
type PlainTextExtractor struct{}

var _ Extractor = PlainTextExtractor{}

func (PlainTextExtractor) ExtractPages(content []byte) ([]strata.Page, error) {
	parts := strings.Split(string(content), "\f")
	pages := make([]strata.Page, 0, len(parts))
	for i, p := range parts {
		pages = append(pages, strata.Page{Number: i + 1, Text: p})
	}
	return pages, nil
}
