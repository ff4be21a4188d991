// Package chunk implements the chunking strategies and page-context binding
// for the ingestion pipeline. All strategies are pure functions over
// (text, config); the semantic strategy additionally calls an injected
// embedding capability. Strategies report character positions as byte
// offsets into the input text so that page context can be recovered later.
package chunk

import (
	"context"
	"fmt"

	"github.com/stratalab/strata"
)

// Strategy selects how document text is partitioned into chunks.
type Strategy int

const (
	// StrategyRecursive recursively splits on paragraph, sentence, word,
	// and finally rune boundaries, merging pieces greedily up to ChunkSize
	// characters with a trailing-character overlap.
	StrategyRecursive Strategy = iota

	// StrategyTokenWindow slides a fixed window of ChunkSize tokens with a
	// stride of ChunkSize-Overlap over the tokenized text.
	StrategyTokenWindow

	// StrategySemantic splits at sentence boundaries where embedding
	// similarity drops below SimilarityThreshold. Chunk sizes are unbounded
	// by ChunkSize; coherence wins over size.
	StrategySemantic
)

// String returns the config-file name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyRecursive:
		return "recursive"
	case StrategyTokenWindow:
		return "token"
	case StrategySemantic:
		return "semantic"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a config-file name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "recursive", "":
		return StrategyRecursive, nil
	case "token":
		return StrategyTokenWindow, nil
	case "semantic":
		return StrategySemantic, nil
	}
	return 0, &strata.ConfigError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", name)}
}

// Span is one chunk of text with its half-open byte range [Start, End) in
// the input. Spans from one Split call are ordered by Start; consecutive
// spans overlap by at most the configured overlap window.
type Span struct {
	Text  string
	Start int
	End   int
}

// Config holds the chunking parameters shared by all strategies.
// ChunkSize is characters for StrategyRecursive, tokens for
// StrategyTokenWindow, and unused by StrategySemantic. Overlap uses the same
// unit as ChunkSize. SimilarityThreshold only applies to StrategySemantic.
type Config struct {
	Strategy            Strategy
	ChunkSize           int
	Overlap             int
	SimilarityThreshold float64
}

// Validate rejects malformed parameters before any splitting begins.
func (c Config) Validate() error {
	if c.Strategy < StrategyRecursive || c.Strategy > StrategySemantic {
		return &strata.ConfigError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %d", int(c.Strategy))}
	}
	if c.ChunkSize <= 0 {
		return &strata.ConfigError{Field: "chunk_size", Reason: fmt.Sprintf("must be positive, got %d", c.ChunkSize)}
	}
	if c.Overlap < 0 {
		return &strata.ConfigError{Field: "overlap", Reason: fmt.Sprintf("must not be negative, got %d", c.Overlap)}
	}
	if c.Overlap >= c.ChunkSize {
		return &strata.ConfigError{Field: "overlap", Reason: fmt.Sprintf("must be smaller than chunk_size (%d >= %d)", c.Overlap, c.ChunkSize)}
	}
	if c.Strategy == StrategySemantic && (c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1) {
		return &strata.ConfigError{Field: "similarity_threshold", Reason: fmt.Sprintf("must be in [0,1], got %g", c.SimilarityThreshold)}
	}
	return nil
}

// Splitter partitions text into an ordered sequence of spans covering the
// full input; no text is silently dropped.
type Splitter interface {
	Split(ctx context.Context, text string) ([]Span, error)
}

// NewSplitter validates cfg and builds the strategy it names. The tokenizer
// is required for StrategyTokenWindow and the embed function for
// StrategySemantic; both are ignored by the other strategies.
func NewSplitter(cfg Config, tok strata.Tokenizer, embed strata.EmbedFunc) (Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Strategy {
	case StrategyTokenWindow:
		if tok == nil {
			return nil, &strata.ConfigError{Field: "strategy", Reason: "token strategy requires a tokenizer"}
		}
		return NewTokenWindow(tok, cfg), nil
	case StrategySemantic:
		if embed == nil {
			return nil, &strata.ConfigError{Field: "strategy", Reason: "semantic strategy requires an embedder"}
		}
		return NewSemantic(embed, cfg), nil
	default:
		return NewRecursive(cfg), nil
	}
}
