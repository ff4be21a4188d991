package chunk

import (
	"context"

	"github.com/stratalab/strata"
)

// TokenWindowSplitter implements StrategyTokenWindow: a sliding window of
// ChunkSize tokens advancing ChunkSize-Overlap tokens per step. The final
// partial window is still emitted when non-empty, so every token is covered.
//
// Character offsets are recovered from per-token decoded byte lengths, which
// requires the tokenizer's Decode to be concatenative (decoding token slices
// piecewise yields the same bytes as decoding them at once). BPE tokenizers
// such as tiktoken satisfy this.
type TokenWindowSplitter struct {
	tok     strata.Tokenizer
	size    int
	overlap int
}

var _ Splitter = (*TokenWindowSplitter)(nil)

// NewTokenWindow creates a TokenWindowSplitter from cfg. cfg is assumed
// valid; use NewSplitter to validate.
func NewTokenWindow(tok strata.Tokenizer, cfg Config) *TokenWindowSplitter {
	return &TokenWindowSplitter{tok: tok, size: cfg.ChunkSize, overlap: cfg.Overlap}
}

// Split tokenizes text and emits one span per window position.
func (ts *TokenWindowSplitter) Split(_ context.Context, text string) ([]Span, error) {
	if text == "" {
		return nil, nil
	}
	tokens := ts.tok.Encode(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	// Prefix byte offsets of each token's decoded form.
	offsets := make([]int, len(tokens)+1)
	for i, t := range tokens {
		offsets[i+1] = offsets[i] + len(ts.tok.Decode([]int{t}))
	}

	stride := ts.size - ts.overlap
	var spans []Span
	for start := 0; start < len(tokens); start += stride {
		end := start + ts.size
		if end > len(tokens) {
			end = len(tokens)
		}
		s, e := offsets[start], offsets[end]
		spans = append(spans, Span{Text: text[s:e], Start: s, End: e})
		if end == len(tokens) {
			break
		}
	}
	return spans, nil
}
