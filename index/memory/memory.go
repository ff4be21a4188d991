// Package memory implements strata.IndexWriter in process memory with
// brute-force cosine search. Intended for tests and local experiments.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/stratalab/strata"
)

// Writer stores records in a map keyed by record ID. Safe for concurrent
// use.
type Writer struct {
	mu      sync.RWMutex
	records map[string]strata.IndexRecord
}

var _ strata.IndexWriter = (*Writer)(nil)

// New creates an empty Writer.
func New() *Writer {
	return &Writer{records: make(map[string]strata.IndexRecord)}
}

// Upsert stores every record, replacing any previous record with the same
// ID. It never fails per record.
func (w *Writer) Upsert(_ context.Context, records []strata.IndexRecord) ([]strata.UpsertResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	results := make([]strata.UpsertResult, len(records))
	for i, r := range records {
		w.records[r.ID] = r
		results[i] = strata.UpsertResult{ID: r.ID}
	}
	return results, nil
}

// Get returns the record with the given ID.
func (w *Writer) Get(id string) (strata.IndexRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.records[id]
	return r, ok
}

// Len returns the number of stored records.
func (w *Writer) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.records)
}

// Records returns all stored records sorted by document ID then ID.
func (w *Writer) Records() []strata.IndexRecord {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]strata.IndexRecord, 0, len(w.records))
	for _, r := range w.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Search returns the topK records most similar to the query vector.
func (w *Writer) Search(_ context.Context, embedding []float32, topK int) ([]strata.ScoredRecord, error) {
	if topK <= 0 {
		topK = 10
	}
	w.mu.RLock()
	scored := make([]strata.ScoredRecord, 0, len(w.records))
	for _, r := range w.records {
		scored = append(scored, strata.ScoredRecord{Record: r, Score: cosine(embedding, r.Embedding)})
	}
	w.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
