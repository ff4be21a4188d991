package ingest

import (
	"log/slog"
	"strings"
	"time"

	"github.com/stratalab/strata"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTokenizer sets the tokenizer for the token-window strategy.
func WithTokenizer(tok strata.Tokenizer) Option {
	return func(p *Pipeline) { p.tokenizer = tok }
}

// WithBlobReader sets the object-storage reader used by Load and RunBlobs.
func WithBlobReader(r strata.BlobReader) Option {
	return func(p *Pipeline) { p.reader = r }
}

// WithExtractor registers an Extractor for a file extension (".pdf").
// The empty extension sets the fallback extractor.
func WithExtractor(ext string, e Extractor) Option {
	return func(p *Pipeline) { p.extractors[strings.ToLower(ext)] = e }
}

// WithBatchSize sets the number of chunk texts per Embed call (default 64).
func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithMaxConcurrent bounds the number of documents processed in parallel
// (default 4). Embedding and index-write calls inherit the bound, which is
// what keeps the pipeline inside external service rate limits.
func WithMaxConcurrent(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxConcurrent = n
		}
	}
}

// WithBatchTimeout sets a deadline for starting documents within a batch.
// Documents not yet started when it expires are abandoned and reported as
// skipped; in-flight documents run to completion. Zero disables the limit.
func WithBatchTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.batchTimeout = d }
}

// WithRetry passes options to the embedding retry wrapper.
func WithRetry(opts ...strata.RetryOption) Option {
	return func(p *Pipeline) { p.retryOpts = append(p.retryOpts, opts...) }
}

// WithLogger sets the structured logger. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}
