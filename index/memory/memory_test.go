package memory

import (
	"context"
	"testing"

	"github.com/stratalab/strata"
)

func TestUpsertAndGet(t *testing.T) {
	w := New()
	records := []strata.IndexRecord{
		{ID: "r1", DocumentID: "d1", Content: "one"},
		{ID: "r2", DocumentID: "d1", Content: "two"},
	}
	results, err := w.Upsert(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("record %s failed: %v", r.ID, r.Err)
		}
	}
	if w.Len() != 2 {
		t.Errorf("expected 2 records, got %d", w.Len())
	}
	got, ok := w.Get("r1")
	if !ok || got.Content != "one" {
		t.Errorf("Get(r1) = %+v, %v", got, ok)
	}
}

func TestUpsertReplaces(t *testing.T) {
	w := New()
	ctx := context.Background()
	w.Upsert(ctx, []strata.IndexRecord{{ID: "r1", Content: "old"}})
	w.Upsert(ctx, []strata.IndexRecord{{ID: "r1", Content: "new"}})

	if w.Len() != 1 {
		t.Errorf("expected 1 record after upsert, got %d", w.Len())
	}
	got, _ := w.Get("r1")
	if got.Content != "new" {
		t.Errorf("expected replaced content, got %q", got.Content)
	}
}

func TestRecordsSorted(t *testing.T) {
	w := New()
	w.Upsert(context.Background(), []strata.IndexRecord{
		{ID: "b", DocumentID: "d2"},
		{ID: "a", DocumentID: "d1"},
		{ID: "c", DocumentID: "d1"},
	})
	records := w.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	wantIDs := []string{"a", "c", "b"}
	for i, r := range records {
		if r.ID != wantIDs[i] {
			t.Errorf("position %d: got %s, want %s", i, r.ID, wantIDs[i])
		}
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	w := New()
	w.Upsert(context.Background(), []strata.IndexRecord{
		{ID: "exact", Embedding: []float32{1, 0}},
		{ID: "close", Embedding: []float32{0.9, 0.1}},
		{ID: "far", Embedding: []float32{0, 1}},
	})

	results, err := w.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Record.ID != "exact" {
		t.Errorf("expected exact match first, got %s", results[0].Record.ID)
	}
	if results[1].Record.ID != "close" {
		t.Errorf("expected close match second, got %s", results[1].Record.ID)
	}
	if results[0].Score < results[1].Score {
		t.Error("results should be in descending score order")
	}
}

func TestSearchDefaultTopK(t *testing.T) {
	w := New()
	results, err := w.Search(context.Background(), []float32{1, 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("empty index should return no results, got %d", len(results))
	}
}
