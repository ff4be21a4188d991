// Package strata prepares unstructured documents for retrieval-augmented
// generation. It takes page-segmented text produced by an upstream extraction
// stage, splits it into retrieval-sized chunks using one of three strategies
// (recursive-character, token-window, semantic-breakpoint), binds page
// numbers and character offsets to each chunk, embeds chunk text in batches,
// and writes the resulting records to a vector index.
//
// The root package holds the domain types and the narrow collaborator
// interfaces (Embedder, Tokenizer, IndexWriter, BlobReader). The chunking
// algorithms live in package chunk, orchestration in package ingest, and
// concrete collaborators in their own subpackages so their dependencies are
// only pulled in by users who need them.
package strata
