package strata

// --- Domain types ---

// Page is one page of extracted document text. Numbers start at 1 and are
// strictly increasing within a document; gaps are tolerated (a scanned
// document may have unreadable pages) but never renumbered.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Chunk is a retrieval-sized unit of document text with its position in the
// concatenated document. Start and End are byte offsets into the normalized
// document text (half-open range). Pages lists every source page whose text
// contributes to the chunk, ascending.
type Chunk struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
	Pages []int  `json:"pages"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// IndexRecord is the persisted unit combining chunk text, page metadata, and
// the embedding vector. The ID is derived from the document ID and chunk
// index, so re-ingesting the same document overwrites its previous records.
// Records are immutable once built.
type IndexRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	Content    string    `json:"content"`
	Pages      []int     `json:"pages"`
	Embedding  []float32 `json:"-"`
	CreatedAt  int64     `json:"created_at"`
}

// UpsertResult reports the outcome of persisting a single record.
// A nil Err means the record was written.
type UpsertResult struct {
	ID  string
	Err error
}

// ScoredRecord is an IndexRecord with its similarity score, returned by
// index writers that also support search.
type ScoredRecord struct {
	Record IndexRecord
	Score  float64
}
