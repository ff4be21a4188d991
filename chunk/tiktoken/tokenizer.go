// Package tiktoken adapts pkoukk/tiktoken-go to the strata.Tokenizer
// interface for the token-window chunking strategy.
//
// It lives in its own subpackage so the BPE vocabulary dependency is only
// pulled in by users of that strategy.
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/stratalab/strata"
)

const defaultEncoding = "cl100k_base"

// Tokenizer is a BPE tokenizer backed by a tiktoken encoding.
type Tokenizer struct {
	tke *tiktoken.Tiktoken
}

var _ strata.Tokenizer = (*Tokenizer)(nil)

// New creates a Tokenizer for the given encoding or model name. An empty
// name and any unknown name fall back to cl100k_base.
func New(modelOrEncoding string) (*Tokenizer, error) {
	if modelOrEncoding == "" {
		modelOrEncoding = defaultEncoding
	}
	tke, err := tiktoken.GetEncoding(modelOrEncoding)
	if err != nil {
		tke, err = tiktoken.EncodingForModel(modelOrEncoding)
	}
	if err != nil {
		tke, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("tiktoken: load default encoding: %w", err)
		}
	}
	return &Tokenizer{tke: tke}, nil
}

// Encode returns the BPE token IDs of text.
func (t *Tokenizer) Encode(text string) []int {
	return t.tke.Encode(text, nil, nil)
}

// Decode returns the text form of tokens.
func (t *Tokenizer) Decode(tokens []int) string {
	return t.tke.Decode(tokens)
}
