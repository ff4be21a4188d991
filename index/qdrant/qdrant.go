// Package qdrant implements strata.IndexWriter against a Qdrant server
// over its REST API. It assumes cosine distance and creates the
// collection if missing.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stratalab/strata"
)

// Config holds the Qdrant connection settings.
type Config struct {
	// URL is the base server URL, e.g. http://localhost:6333.
	URL string
	// APIKey is sent in the api-key header when non-empty.
	APIKey string
	// Collection is the target collection name.
	Collection string
	// Timeout bounds each HTTP request. Defaults to 15 seconds.
	Timeout time.Duration
}

// Writer is a minimal REST client to Qdrant.
type Writer struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

var _ strata.IndexWriter = (*Writer)(nil)

// pointNamespace derives deterministic Qdrant point IDs from record IDs.
// Qdrant only accepts unsigned integers or UUIDs as point IDs, so the
// record's hex digest is mapped to a name-based UUID.
var pointNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// New creates a Writer from cfg.
func New(cfg Config) *Writer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Writer{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if it does not exist. Qdrant returns 200 OK
// when the collection already exists with the same schema.
func (w *Writer) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return &strata.ConfigError{Field: "dimension", Reason: "must be positive"}
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return w.putJSON(ctx, fmt.Sprintf("%s/collections/%s", w.url, w.collection), body)
}

// PointID maps a record ID to its deterministic Qdrant point UUID.
func PointID(recordID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(recordID)).String()
}

// Upsert writes all records in one request. Qdrant applies the batch
// atomically, so a transport or server failure is reported on every record.
func (w *Writer) Upsert(ctx context.Context, records []strata.IndexRecord) ([]strata.UpsertResult, error) {
	results := make([]strata.UpsertResult, len(records))
	points := make([]map[string]any, len(records))
	for i, r := range records {
		results[i] = strata.UpsertResult{ID: r.ID}
		points[i] = map[string]any{
			"id":     PointID(r.ID),
			"vector": r.Embedding,
			"payload": map[string]any{
				"record_id":   r.ID,
				"document_id": r.DocumentID,
				"content":     r.Content,
				"pages":       r.Pages,
				"created_at":  r.CreatedAt,
			},
		}
	}
	body := map[string]any{"points": points}
	err := w.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", w.url, w.collection), body)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteDocument removes every point whose payload document_id matches.
func (w *Writer) DeleteDocument(ctx context.Context, documentID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "document_id", "match": map[string]any{"value": documentID}},
			},
		},
	}
	return w.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/delete?wait=true", w.url, w.collection), body, nil)
}

// Search returns the topK records most similar to the query vector.
func (w *Writer) Search(ctx context.Context, embedding []float32, topK int) ([]strata.ScoredRecord, error) {
	if topK <= 0 {
		topK = 10
	}
	req := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := w.postJSON(ctx, fmt.Sprintf("%s/collections/%s/points/search", w.url, w.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]strata.ScoredRecord, 0, len(resp.Result))
	for _, r := range resp.Result {
		rec := strata.IndexRecord{}
		if v, ok := r.Payload["record_id"].(string); ok {
			rec.ID = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			rec.DocumentID = v
		}
		if v, ok := r.Payload["content"].(string); ok {
			rec.Content = v
		}
		if v, ok := r.Payload["pages"].([]any); ok {
			for _, p := range v {
				if n, ok := p.(float64); ok {
					rec.Pages = append(rec.Pages, int(n))
				}
			}
		}
		if v, ok := r.Payload["created_at"].(float64); ok {
			rec.CreatedAt = int64(v)
		}
		results = append(results, strata.ScoredRecord{Record: rec, Score: r.Score})
	}
	return results, nil
}

// Drop deletes the collection. Best effort.
func (w *Writer) Drop(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/collections/%s", w.url, w.collection), nil)
	if err != nil {
		return err
	}
	if w.apiKey != "" {
		req.Header.Set("api-key", w.apiKey)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (w *Writer) putJSON(ctx context.Context, url string, body any) error {
	return w.doJSON(ctx, http.MethodPut, url, body, nil)
}

func (w *Writer) postJSON(ctx context.Context, url string, body any, out any) error {
	return w.doJSON(ctx, http.MethodPost, url, body, out)
}

func (w *Writer) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("api-key", w.apiKey)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
