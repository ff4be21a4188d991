package chunk

import (
	"context"
	"errors"
	"testing"

	"github.com/stratalab/strata"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		field   string
		wantErr bool
	}{
		{"valid recursive", Config{Strategy: StrategyRecursive, ChunkSize: 100, Overlap: 20}, "", false},
		{"valid semantic", Config{Strategy: StrategySemantic, ChunkSize: 100, SimilarityThreshold: 0.8}, "", false},
		{"zero chunk size", Config{Strategy: StrategyRecursive, ChunkSize: 0}, "chunk_size", true},
		{"negative chunk size", Config{Strategy: StrategyRecursive, ChunkSize: -5}, "chunk_size", true},
		{"negative overlap", Config{Strategy: StrategyRecursive, ChunkSize: 100, Overlap: -1}, "overlap", true},
		{"overlap equals size", Config{Strategy: StrategyRecursive, ChunkSize: 100, Overlap: 100}, "overlap", true},
		{"threshold too high", Config{Strategy: StrategySemantic, ChunkSize: 100, SimilarityThreshold: 1.5}, "similarity_threshold", true},
		{"threshold negative", Config{Strategy: StrategySemantic, ChunkSize: 100, SimilarityThreshold: -0.1}, "similarity_threshold", true},
		{"unknown strategy", Config{Strategy: Strategy(99), ChunkSize: 100}, "strategy", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var cerr *strata.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cerr.Field)
			}
		})
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{StrategyRecursive, StrategyTokenWindow, StrategySemantic} {
		got, err := ParseStrategy(s.String())
		if err != nil {
			t.Fatalf("ParseStrategy(%q): %v", s.String(), err)
		}
		if got != s {
			t.Errorf("round trip %q: got %v", s.String(), got)
		}
	}

	if got, err := ParseStrategy(""); err != nil || got != StrategyRecursive {
		t.Errorf("empty name should default to recursive, got %v, %v", got, err)
	}

	if _, err := ParseStrategy("bogus"); err == nil {
		t.Error("expected error for unknown strategy name")
	}
}

func TestNewSplitterRequiresCollaborators(t *testing.T) {
	_, err := NewSplitter(Config{Strategy: StrategyTokenWindow, ChunkSize: 10, Overlap: 2}, nil, nil)
	var cerr *strata.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("token strategy without tokenizer: expected ConfigError, got %v", err)
	}

	_, err = NewSplitter(Config{Strategy: StrategySemantic, ChunkSize: 10, SimilarityThreshold: 0.5}, nil, nil)
	if !errors.As(err, &cerr) {
		t.Fatalf("semantic strategy without embedder: expected ConfigError, got %v", err)
	}
}

func TestNewSplitterRecursive(t *testing.T) {
	s, err := NewSplitter(Config{Strategy: StrategyRecursive, ChunkSize: 50, Overlap: 10}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spans, err := s.Split(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(spans) != 1 || spans[0].Text != "hello world" {
		t.Errorf("expected single span, got %+v", spans)
	}
}
