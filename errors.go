package strata

import (
	"fmt"
	"time"
)

// ConfigError reports invalid chunking or pipeline parameters. It is raised
// before any document is read; a pipeline is never constructed with a bad
// config.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// ExtractionError reports a failure turning raw bytes into pages. The
// affected document is skipped; the batch continues.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError reports a failure from the embedding service. Transient
// errors (rate limits, service unavailable) are retried at batch granularity
// with backoff; permanent errors fail the document immediately. RetryAfter
// carries the server's Retry-After hint when present.
type EmbeddingError struct {
	Transient  bool
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *EmbeddingError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Status > 0 {
		return fmt.Sprintf("embed: %s (http %d): %v", kind, e.Status, e.Err)
	}
	return fmt.Sprintf("embed: %s: %v", kind, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexWriteError reports a failure persisting a single record. Sibling
// records are unaffected; the failure is surfaced in the batch report.
type IndexWriteError struct {
	RecordID string
	Err      error
}

func (e *IndexWriteError) Error() string {
	return fmt.Sprintf("index write %s: %v", e.RecordID, e.Err)
}

func (e *IndexWriteError) Unwrap() error { return e.Err }
