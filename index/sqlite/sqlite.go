// Package sqlite implements strata.IndexWriter using pure-Go SQLite with
// in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/stratalab/strata"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Option configures a SQLite Writer.
type Option func(*Writer)

// WithLogger sets a structured logger for the writer. When set, it emits
// debug logs for every operation including timing and row counts. If not
// set, no logs are emitted.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// Writer persists index records to a local SQLite file. Embeddings are
// stored as JSON text and vector search is done in-process using
// brute-force cosine similarity.
type Writer struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ strata.IndexWriter = (*Writer)(nil)

// nopLogger discards all output.
var nopLogger = slog.New(discardHandler{})

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// New creates a Writer using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...Option) *Writer {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	w := &Writer{db: db, logger: nopLogger}
	for _, o := range opts {
		o(w)
	}
	w.logger.Debug("sqlite: index opened", "path", dbPath)
	return w
}

// Init creates the records table. Safe to call multiple times.
func (w *Writer) Init(ctx context.Context) error {
	start := time.Now()
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS index_records (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			content TEXT NOT NULL,
			pages TEXT NOT NULL,
			embedding TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS index_records_document_idx ON index_records(document_id)`,
	}
	for _, stmt := range ddl {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	w.logger.Debug("sqlite: init done", "elapsed", time.Since(start))
	return nil
}

// Close closes the underlying database.
func (w *Writer) Close() error { return w.db.Close() }

// Upsert writes each record independently; a per-record failure is reported
// in its result and does not abort sibling records.
func (w *Writer) Upsert(ctx context.Context, records []strata.IndexRecord) ([]strata.UpsertResult, error) {
	start := time.Now()
	results := make([]strata.UpsertResult, len(records))
	for i, r := range records {
		results[i] = strata.UpsertResult{ID: r.ID}
		pages, err := json.Marshal(r.Pages)
		if err != nil {
			results[i].Err = &strata.IndexWriteError{RecordID: r.ID, Err: err}
			continue
		}
		embedding, err := json.Marshal(r.Embedding)
		if err != nil {
			results[i].Err = &strata.IndexWriteError{RecordID: r.ID, Err: err}
			continue
		}
		_, err = w.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO index_records (id, document_id, content, pages, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.DocumentID, r.Content, string(pages), string(embedding), r.CreatedAt)
		if err != nil {
			results[i].Err = &strata.IndexWriteError{RecordID: r.ID, Err: err}
		}
	}
	w.logger.Debug("sqlite: upsert done", "records", len(records), "elapsed", time.Since(start))
	return results, nil
}

// DeleteDocument removes every record of a document.
func (w *Writer) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	res, err := w.db.ExecContext(ctx, `DELETE FROM index_records WHERE document_id = ?`, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete document %s: %w", documentID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Search returns the topK records most similar to the query vector,
// scored by cosine similarity computed in-process.
func (w *Writer) Search(ctx context.Context, embedding []float32, topK int) ([]strata.ScoredRecord, error) {
	if topK <= 0 {
		topK = 10
	}
	start := time.Now()
	rows, err := w.db.QueryContext(ctx,
		`SELECT id, document_id, content, pages, embedding, created_at
		 FROM index_records WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var scored []strata.ScoredRecord
	for rows.Next() {
		var r strata.IndexRecord
		var pagesJSON, embJSON string
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Content, &pagesJSON, &embJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("search scan: %w", err)
		}
		if err := json.Unmarshal([]byte(pagesJSON), &r.Pages); err != nil {
			continue
		}
		if err := json.Unmarshal([]byte(embJSON), &r.Embedding); err != nil {
			continue
		}
		scored = append(scored, strata.ScoredRecord{Record: r, Score: cosine(embedding, r.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	w.logger.Debug("sqlite: search done", "results", len(scored), "elapsed", time.Since(start))
	return scored, nil
}

func cosine(a, b []float32) float64 {
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
