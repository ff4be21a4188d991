package chunk

import (
	"context"
	"fmt"
	"math"

	"github.com/stratalab/strata"
)

// SemanticSplitter implements StrategySemantic: split text into sentences,
// embed them all in one call, and insert a breakpoint wherever cosine
// similarity between consecutive sentences drops below the configured
// threshold. Sentences between breakpoints form one chunk regardless of
// size; coherence is prioritized over ChunkSize.
//
// Similarities are clamped to [0,1] before comparison, so a threshold of 0
// never splits and a threshold of 1 splits at every boundary between
// non-identical embeddings.
type SemanticSplitter struct {
	embed     strata.EmbedFunc
	threshold float64
}

var _ Splitter = (*SemanticSplitter)(nil)

// NewSemantic creates a SemanticSplitter from cfg. cfg is assumed valid;
// use NewSplitter to validate.
func NewSemantic(embed strata.EmbedFunc, cfg Config) *SemanticSplitter {
	return &SemanticSplitter{embed: embed, threshold: cfg.SimilarityThreshold}
}

// Split partitions text at semantic breakpoints. Fewer than two sentences
// yield a single span with no embedding call.
func (ss *SemanticSplitter) Split(ctx context.Context, text string) ([]Span, error) {
	if text == "" {
		return nil, nil
	}
	sentences := sentenceSpans(text)
	if len(sentences) < 2 {
		return []Span{{Text: text, Start: 0, End: len(text)}}, nil
	}

	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}
	embeddings, err := ss.embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(sentences) {
		return nil, &strata.EmbeddingError{
			Err: fmt.Errorf("got %d vectors for %d sentences", len(embeddings), len(sentences)),
		}
	}

	var spans []Span
	start := sentences[0].Start
	for i := 0; i < len(sentences)-1; i++ {
		sim := clamp01(cosineSim(embeddings[i], embeddings[i+1]))
		if sim < ss.threshold {
			end := sentences[i+1].Start
			spans = append(spans, Span{Text: text[start:end], Start: start, End: end})
			start = end
		}
	}
	spans = append(spans, Span{Text: text[start:], Start: start, End: len(text)})
	return spans, nil
}

// cosineSim computes cosine similarity between two vectors.
func cosineSim(a, b []float32) float64 {
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

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
