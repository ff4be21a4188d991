package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/stratalab/strata"
)

// ---------------------------------------------------------------------------
// Mock implementations
// ---------------------------------------------------------------------------

type mockEmbedder struct {
	name string
	dims int
	vecs [][]float32
	err  error
}

func (m *mockEmbedder) Name() string    { return m.name }
func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return m.vecs, m.err
}

type mockWriter struct {
	results []strata.UpsertResult
	err     error
	got     []strata.IndexRecord
}

func (m *mockWriter) Upsert(_ context.Context, records []strata.IndexRecord) ([]strata.UpsertResult, error) {
	m.got = records
	return m.results, m.err
}

// testInstruments creates a no-op Instruments using the global OTEL providers
// (which are no-ops by default). This is safe for testing delegation behavior
// without any real OTEL backend.
func testInstruments(t *testing.T) *Instruments {
	t.Helper()
	inst, err := newInstruments()
	if err != nil {
		t.Fatalf("newInstruments: %v", err)
	}
	return inst
}

// ---------------------------------------------------------------------------
// ObservedEmbedding tests
// ---------------------------------------------------------------------------

func TestObservedEmbeddingName(t *testing.T) {
	inner := &mockEmbedder{name: "test-embedder", dims: 4}
	oe := WrapEmbedding(inner, "test-model", testInstruments(t))

	if got := oe.Name(); got != "test-embedder" {
		t.Errorf("Name() = %q, want %q", got, "test-embedder")
	}
	if got := oe.Dimensions(); got != 4 {
		t.Errorf("Dimensions() = %d, want 4", got)
	}
}

func TestObservedEmbeddingEmbed(t *testing.T) {
	want := [][]float32{{0.1, 0.2}, {0.3, 0.4}}
	inner := &mockEmbedder{name: "e", dims: 2, vecs: want}
	oe := WrapEmbedding(inner, "m", testInstruments(t))

	got, err := oe.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed returned unexpected error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Embed returned %d vectors, want %d", len(got), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("vector[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestObservedEmbeddingEmbedError(t *testing.T) {
	wantErr := errors.New("embedder unavailable")
	inner := &mockEmbedder{name: "e", dims: 2, err: wantErr}
	oe := WrapEmbedding(inner, "m", testInstruments(t))

	_, err := oe.Embed(context.Background(), []string{"a"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Embed error = %v, want %v", err, wantErr)
	}
}

// ---------------------------------------------------------------------------
// ObservedWriter tests
// ---------------------------------------------------------------------------

func TestObservedWriterUpsert(t *testing.T) {
	records := []strata.IndexRecord{
		{ID: "r1", DocumentID: "d", Content: "one"},
		{ID: "r2", DocumentID: "d", Content: "two"},
	}
	inner := &mockWriter{results: []strata.UpsertResult{{ID: "r1"}, {ID: "r2"}}}
	ow := WrapWriter(inner, "memory", testInstruments(t))

	results, err := ow.Upsert(context.Background(), records)
	if err != nil {
		t.Fatalf("Upsert returned unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Upsert returned %d results, want 2", len(results))
	}
	if len(inner.got) != 2 {
		t.Errorf("inner received %d records, want 2", len(inner.got))
	}
}

func TestObservedWriterUpsertPartialFailure(t *testing.T) {
	inner := &mockWriter{results: []strata.UpsertResult{
		{ID: "r1"},
		{ID: "r2", Err: &strata.IndexWriteError{RecordID: "r2", Err: errors.New("conflict")}},
	}}
	ow := WrapWriter(inner, "postgres", testInstruments(t))

	results, err := ow.Upsert(context.Background(), []strata.IndexRecord{{ID: "r1"}, {ID: "r2"}})
	if err != nil {
		t.Fatalf("Upsert returned unexpected error: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("r1 result has error: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("r2 result should carry the write error")
	}
}

func TestObservedWriterUpsertTransportError(t *testing.T) {
	wantErr := errors.New("connection refused")
	inner := &mockWriter{err: wantErr}
	ow := WrapWriter(inner, "qdrant", testInstruments(t))

	_, err := ow.Upsert(context.Background(), []strata.IndexRecord{{ID: "r1"}})
	if !errors.Is(err, wantErr) {
		t.Errorf("Upsert error = %v, want %v", err, wantErr)
	}
}
