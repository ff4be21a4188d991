// Package postgres implements strata.IndexWriter using PostgreSQL with
// pgvector for native vector similarity search.
//
// The Writer accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratalab/strata"
)

// Writer persists index records to PostgreSQL. Vector search uses HNSW
// indexes with cosine distance.
type Writer struct {
	pool *pgxpool.Pool
	cfg  pgConfig
}

var _ strata.IndexWriter = (*Writer)(nil)

// pgConfig holds writer configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
}

// Option configures a PostgreSQL Writer.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 1536).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, catching
// dimension mismatches at insert time. Only affects new table creation.
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Only affects index creation.
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter.
// Only affects index creation.
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// New creates a Writer using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Writer {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &Writer{pool: pool, cfg: cfg}
}

func (w *Writer) vectorType() string {
	if w.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", w.cfg.embeddingDimension)
	}
	return "vector"
}

func (w *Writer) hnswWithClause() string {
	var parts []string
	if w.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", w.cfg.hnswM))
	}
	if w.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", w.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, the records table, and its indexes.
// Safe to call multiple times (all statements are idempotent).
func (w *Writer) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS index_records (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			content TEXT NOT NULL,
			pages INTEGER[] NOT NULL,
			embedding %s,
			created_at BIGINT NOT NULL
		)`, w.vectorType()),
		`CREATE INDEX IF NOT EXISTS index_records_document_idx ON index_records(document_id)`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS index_records_embedding_idx ON index_records USING hnsw (embedding vector_cosine_ops)%s`, w.hnswWithClause()),
	}
	for _, ddl := range stmts {
		if _, err := w.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("init: %w", err)
		}
	}
	return nil
}

// Upsert writes each record independently; a per-record failure is reported
// in its result and does not abort sibling records.
func (w *Writer) Upsert(ctx context.Context, records []strata.IndexRecord) ([]strata.UpsertResult, error) {
	results := make([]strata.UpsertResult, len(records))
	for i, r := range records {
		pages := make([]int32, len(r.Pages))
		for j, p := range r.Pages {
			pages[j] = int32(p)
		}
		_, err := w.pool.Exec(ctx,
			`INSERT INTO index_records (id, document_id, content, pages, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   document_id = EXCLUDED.document_id,
			   content = EXCLUDED.content,
			   pages = EXCLUDED.pages,
			   embedding = EXCLUDED.embedding,
			   created_at = EXCLUDED.created_at`,
			r.ID, r.DocumentID, r.Content, pages, vectorLiteral(r.Embedding), r.CreatedAt)
		results[i] = strata.UpsertResult{ID: r.ID}
		if err != nil {
			results[i].Err = &strata.IndexWriteError{RecordID: r.ID, Err: err}
		}
	}
	return results, nil
}

// DeleteDocument removes every record of a document. Used before
// re-ingesting a document that may now produce fewer chunks.
func (w *Writer) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	tag, err := w.pool.Exec(ctx, `DELETE FROM index_records WHERE document_id = $1`, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return int(tag.RowsAffected()), nil
}

// Search returns the topK records nearest to the query vector by cosine
// distance.
func (w *Writer) Search(ctx context.Context, embedding []float32, topK int) ([]strata.ScoredRecord, error) {
	if topK <= 0 {
		topK = 10
	}
	rows, err := w.pool.Query(ctx,
		`SELECT id, document_id, content, pages, created_at,
		        1 - (embedding <=> $1) AS score
		 FROM index_records
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vectorLiteral(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var out []strata.ScoredRecord
	for rows.Next() {
		var sr strata.ScoredRecord
		var pages []int32
		if err := rows.Scan(&sr.Record.ID, &sr.Record.DocumentID, &sr.Record.Content, &pages, &sr.Record.CreatedAt, &sr.Score); err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		sr.Record.Pages = make([]int, len(pages))
		for i, p := range pages {
			sr.Record.Pages[i] = int(p)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}
	return out, nil
}

// vectorLiteral formats a float32 slice as a pgvector literal: [1,2,3].
func vectorLiteral(v []float32) string {
	if len(v) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ErrNoRows is re-exported so callers need not import pgx directly.
var ErrNoRows = pgx.ErrNoRows
