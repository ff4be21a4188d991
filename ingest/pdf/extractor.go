// Package pdf provides a page-segmented PDF extractor for the ingest
// pipeline.
//
// It uses ledongthuc/pdf (BSD-3, pure Go, no CGO) for text extraction.
// This is a separate subpackage so that the dependency is only pulled in
// by users who need PDF support.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/stratalab/strata"
	"github.com/stratalab/strata/ingest"
)

// Extractor implements ingest.Extractor for PDF documents. Page numbers
// follow the PDF's own numbering; unreadable or empty pages are skipped,
// leaving gaps rather than renumbering.
type Extractor struct{}

var _ ingest.Extractor = (*Extractor)(nil)

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages extracts plain text page by page.
func (e *Extractor) ExtractPages(content []byte) ([]strata.Page, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []strata.Page
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, strata.Page{Number: i, Text: text})
	}
	return pages, nil
}
