// Package openaicompat implements strata.Embedder over any OpenAI-compatible
// embeddings endpoint (OpenAI, Azure OpenAI, Ollama, vLLM, ...).
//
// HTTP failures are mapped to *strata.EmbeddingError with the transient flag
// set for rate limits and server errors, so the pipeline's retry wrapper can
// tell what is worth retrying.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/stratalab/strata"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"
	defaultTimeout = 60 * time.Second
)

// Embedder calls an OpenAI-compatible /embeddings endpoint.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client
}

var _ strata.Embedder = (*Embedder)(nil)

// Option configures an Embedder.
type Option func(*Embedder)

// WithBaseURL points the embedder at a non-default endpoint.
func WithBaseURL(url string) Option {
	return func(e *Embedder) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithDimensions requests vectors of the given dimension and records it for
// Dimensions(). Models that do not support the parameter ignore it.
func WithDimensions(n int) Option {
	return func(e *Embedder) { e.dimensions = n }
}

// WithHTTPClient replaces the default HTTP client (60s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(e *Embedder) { e.client = c }
}

// New creates an Embedder. An empty model selects text-embedding-3-small.
func New(apiKey, model string, opts ...Option) *Embedder {
	if model == "" {
		model = defaultModel
	}
	e := &Embedder{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Embedder) Name() string    { return "openaicompat" }
func (e *Embedder) Dimensions() int { return e.dimensions }

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(embedRequest{Model: e.model, Input: texts, Dimensions: e.dimensions})
	if err != nil {
		return nil, &strata.EmbeddingError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &strata.EmbeddingError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		// Connection-level failures are worth retrying.
		return nil, &strata.EmbeddingError{Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		embErr := &strata.EmbeddingError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", bytes.TrimSpace(body)),
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			embErr.Transient = true
			embErr.RetryAfter = retryAfter(resp)
		}
		return nil, embErr
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &strata.EmbeddingError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &strata.EmbeddingError{
			Err: fmt.Errorf("got %d vectors for %d texts", len(parsed.Data), len(texts)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, &strata.EmbeddingError{Err: fmt.Errorf("vector index %d out of range", d.Index)}
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// retryAfter parses the Retry-After header as seconds, or 0.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}
