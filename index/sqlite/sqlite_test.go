package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stratalab/strata"
)

func testWriter(t *testing.T) *Writer {
	t.Helper()
	w := New(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { w.Close() })
	if err := w.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return w
}

func TestInitIdempotent(t *testing.T) {
	w := testWriter(t)
	if err := w.Init(context.Background()); err != nil {
		t.Errorf("second Init should succeed: %v", err)
	}
}

func TestUpsertAndSearch(t *testing.T) {
	w := testWriter(t)
	ctx := context.Background()

	records := []strata.IndexRecord{
		{ID: "r1", DocumentID: "d", Content: "close", Pages: []int{1}, Embedding: []float32{1, 0}, CreatedAt: 100},
		{ID: "r2", DocumentID: "d", Content: "far", Pages: []int{2}, Embedding: []float32{0, 1}, CreatedAt: 100},
	}
	results, err := w.Upsert(ctx, records)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("record %s failed: %v", r.ID, r.Err)
		}
	}

	scored, err := w.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scored) != 2 {
		t.Fatalf("expected 2 results, got %d", len(scored))
	}
	if scored[0].Record.ID != "r1" {
		t.Errorf("expected r1 ranked first, got %s", scored[0].Record.ID)
	}
	if scored[0].Record.Content != "close" || len(scored[0].Record.Pages) != 1 {
		t.Errorf("record fields lost on round trip: %+v", scored[0].Record)
	}
}

func TestUpsertReplaces(t *testing.T) {
	w := testWriter(t)
	ctx := context.Background()

	w.Upsert(ctx, []strata.IndexRecord{{ID: "r1", DocumentID: "d", Content: "old", Embedding: []float32{1, 0}}})
	w.Upsert(ctx, []strata.IndexRecord{{ID: "r1", DocumentID: "d", Content: "new", Embedding: []float32{1, 0}}})

	scored, err := w.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected 1 record after replace, got %d", len(scored))
	}
	if scored[0].Record.Content != "new" {
		t.Errorf("expected replaced content, got %q", scored[0].Record.Content)
	}
}

func TestDeleteDocument(t *testing.T) {
	w := testWriter(t)
	ctx := context.Background()

	w.Upsert(ctx, []strata.IndexRecord{
		{ID: "r1", DocumentID: "keep", Embedding: []float32{1, 0}},
		{ID: "r2", DocumentID: "drop", Embedding: []float32{1, 0}},
		{ID: "r3", DocumentID: "drop", Embedding: []float32{0, 1}},
	})

	n, err := w.DeleteDocument(ctx, "drop")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	scored, err := w.Search(ctx, []float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scored) != 1 || scored[0].Record.DocumentID != "keep" {
		t.Errorf("unexpected survivors %+v", scored)
	}
}
