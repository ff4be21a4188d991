package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/stratalab/strata"
)

func TestPointIDDeterministic(t *testing.T) {
	a := PointID("record-1")
	b := PointID("record-1")
	if a != b {
		t.Error("same record ID should map to the same point ID")
	}
	if a == PointID("record-2") {
		t.Error("different record IDs should map to different point IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("point ID %q is not a valid UUID: %v", a, err)
	}
}

func TestInitCreatesCollection(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, Collection: "docs"})
	if err := w.Init(context.Background(), 1536); err != nil {
		t.Fatal(err)
	}
	if gotPath != "PUT /collections/docs" {
		t.Errorf("unexpected request %q", gotPath)
	}
	vectors := gotBody["vectors"].(map[string]any)
	if vectors["size"].(float64) != 1536 || vectors["distance"] != "Cosine" {
		t.Errorf("unexpected vectors config %v", vectors)
	}
}

func TestInitRejectsBadDimension(t *testing.T) {
	w := New(Config{URL: "http://unused", Collection: "docs"})
	if err := w.Init(context.Background(), 0); err == nil {
		t.Error("expected error for non-positive dimension")
	}
}

func TestUpsertSendsPoints(t *testing.T) {
	var gotBody struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, Collection: "docs"})
	records := []strata.IndexRecord{
		{ID: "rec-1", DocumentID: "doc", Content: "text", Pages: []int{3}, Embedding: []float32{1, 0}},
	}
	results, err := w.Upsert(context.Background(), records)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results %+v", results)
	}
	if len(gotBody.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(gotBody.Points))
	}
	p := gotBody.Points[0]
	if p.ID != PointID("rec-1") {
		t.Errorf("point ID %q should be the derived UUID", p.ID)
	}
	if p.Payload["record_id"] != "rec-1" || p.Payload["document_id"] != "doc" {
		t.Errorf("unexpected payload %v", p.Payload)
	}
}

func TestUpsertServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, Collection: "docs"})
	_, err := w.Upsert(context.Background(), []strata.IndexRecord{{ID: "r"}})
	if err == nil {
		t.Error("expected transport-level error")
	}
}

func TestSearchParsesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": []map[string]any{
				{
					"score": 0.93,
					"payload": map[string]any{
						"record_id":   "rec-1",
						"document_id": "doc",
						"content":     "text",
						"pages":       []int{3, 4},
						"created_at":  1700000000,
					},
				},
			},
		})
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, Collection: "docs"})
	results, err := w.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Score != 0.93 {
		t.Errorf("expected score 0.93, got %v", got.Score)
	}
	if got.Record.ID != "rec-1" || got.Record.DocumentID != "doc" {
		t.Errorf("unexpected record %+v", got.Record)
	}
	if len(got.Record.Pages) != 2 || got.Record.Pages[0] != 3 {
		t.Errorf("unexpected pages %v", got.Record.Pages)
	}
	if got.Record.CreatedAt != 1700000000 {
		t.Errorf("unexpected created_at %d", got.Record.CreatedAt)
	}
}

func TestAPIKeyHeader(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, APIKey: "secret", Collection: "docs"})
	if err := w.Init(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	if gotKey != "secret" {
		t.Errorf("expected api-key header, got %q", gotKey)
	}
}
