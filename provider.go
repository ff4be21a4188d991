package strata

import "context"

// Embedder converts texts to fixed-length vectors. Implementations must
// return one vector per input text, in input order. Failures should be
// reported as *EmbeddingError so callers can distinguish transient errors
// (retryable) from permanent ones.
type Embedder interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedFunc adapts a plain function to the shape of Embedder.Embed. The
// semantic chunking strategy takes an EmbedFunc so that Embedder.Embed can be
// passed directly as a method value.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Tokenizer converts text to token IDs and back. Decode must be the inverse
// of Encode, and decoding a concatenation of token slices must equal the
// concatenation of their decodings (true for BPE tokenizers); the
// token-window strategy relies on this to recover character offsets.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// IndexWriter persists records to a searchable index. Upsert returns one
// result per input record; a per-record failure is reported in its result
// and does not abort sibling records. A non-nil error means the whole call
// failed (transport error) and no per-record results are available.
type IndexWriter interface {
	Upsert(ctx context.Context, records []IndexRecord) ([]UpsertResult, error)
}

// BlobReader reads raw document bytes from object storage by name.
// Upload is out of scope; the pipeline only consumes.
type BlobReader interface {
	Read(ctx context.Context, name string) ([]byte, error)
}
