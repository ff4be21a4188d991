package ingest

import (
	"github.com/stratalab/strata"
)

// Status is the outcome of one document's run.
type Status int

const (
	// StatusSucceeded: all stages completed; per-record write failures,
	// if any, are listed in WriteFailures.
	StatusSucceeded Status = iota

	// StatusSkipped: the document never entered the pipeline (extraction
	// failure, or abandoned by a batch timeout).
	StatusSkipped

	// StatusFailed: a pipeline stage failed; no records were persisted
	// for this document by that run.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// DocumentResult is the per-document outcome inside a batch report.
// Err is set for skipped and failed documents; Stage records where a
// failure originated.
type DocumentResult struct {
	DocumentID    string
	Source        string
	Status        Status
	Stage         Stage
	Err           error
	ChunkCount    int
	RecordCount   int
	WriteFailures []strata.UpsertResult
}

func (r DocumentResult) fail(stage Stage, err error) DocumentResult {
	r.Status = StatusFailed
	r.Stage = stage
	r.Err = err
	return r
}

// Report aggregates per-document outcomes for one batch. No error is
// silently swallowed: every skipped or failed document carries its reason,
// and write failures are preserved per record.
type Report struct {
	Results   []DocumentResult
	Succeeded int
	Skipped   int
	Failed    int

	// RecordCount and WriteFailureCount sum over succeeded documents.
	RecordCount       int
	WriteFailureCount int
}

func buildReport(results []DocumentResult) Report {
	rep := Report{Results: results}
	for _, r := range results {
		switch r.Status {
		case StatusSucceeded:
			rep.Succeeded++
			rep.RecordCount += r.RecordCount
			rep.WriteFailureCount += len(r.WriteFailures)
		case StatusSkipped:
			rep.Skipped++
		case StatusFailed:
			rep.Failed++
		}
	}
	return rep
}
