// Package ingest orchestrates the chunking-and-indexing pipeline:
// normalize page text, split it with the configured strategy, bind page
// context, embed chunk texts in batches, build index records, and hand them
// to the index writer. Documents in a batch are processed by independent
// pipeline runs sharing only read-only configuration and the injected
// collaborators.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/stratalab/strata"
	"github.com/stratalab/strata/chunk"
)

// Stage names the pipeline step a document is in. Progression is linear;
// any failure moves the document to StageFailed with the originating error
// preserved.
type Stage int

const (
	StageNormalizing Stage = iota
	StageChunking
	StageBindingContext
	StageEmbedding
	StageBuildingRecords
	StageWriting
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageNormalizing:
		return "normalizing"
	case StageChunking:
		return "chunking"
	case StageBindingContext:
		return "binding_context"
	case StageEmbedding:
		return "embedding"
	case StageBuildingRecords:
		return "building_records"
	case StageWriting:
		return "writing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Document is one unit of work: page-segmented text plus a stable identity.
// An empty ID falls back to Source, keeping record IDs stable across runs;
// a document with neither gets a fresh UUID and its records are not
// idempotent across runs.
type Document struct {
	ID     string
	Source string
	Pages  []strata.Page
}

// Pipeline runs documents through the ingestion stages. Construct with New;
// a Pipeline is immutable after construction and safe for concurrent use.
type Pipeline struct {
	cfg        chunk.Config
	splitter   chunk.Splitter
	embedder   strata.Embedder
	writer     strata.IndexWriter
	reader     strata.BlobReader
	tokenizer  strata.Tokenizer
	extractors map[string]Extractor

	batchSize     int
	maxConcurrent int
	batchTimeout  time.Duration // 0 = no limit
	retryOpts     []strata.RetryOption
	logger        *slog.Logger
}

// New validates cfg and builds a pipeline. The embedder is wrapped with
// transient-error retry; pass strata.RetryOption values via WithRetry to
// tune it. Malformed configuration is rejected here, before any document
// is read.
func New(cfg chunk.Config, embedder strata.Embedder, writer strata.IndexWriter, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, &strata.ConfigError{Field: "embedder", Reason: "must not be nil"}
	}
	if writer == nil {
		return nil, &strata.ConfigError{Field: "index_writer", Reason: "must not be nil"}
	}
	p := &Pipeline{
		cfg:           cfg,
		writer:        writer,
		extractors:    map[string]Extractor{"": PlainTextExtractor{}, ".txt": PlainTextExtractor{}},
		batchSize:     64,
		maxConcurrent: 4,
	}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	retryOpts := append([]strata.RetryOption{strata.RetryLogger(p.logger)}, p.retryOpts...)
	p.embedder = strata.WithEmbeddingRetry(embedder, retryOpts...)

	splitter, err := chunk.NewSplitter(cfg, p.tokenizer, p.embedder.Embed)
	if err != nil {
		return nil, err
	}
	p.splitter = splitter
	return p, nil
}

// Run processes a single document through every stage and reports its
// outcome. Errors never escape the result; the caller decides what a
// failure means for the rest of the batch.
func (p *Pipeline) Run(ctx context.Context, doc Document) DocumentResult {
	id := doc.ID
	if id == "" {
		id = doc.Source
	}
	if id == "" {
		id = strata.NewID()
	}
	res := DocumentResult{DocumentID: id, Source: doc.Source}

	// Normalizing
	pages := make([]strata.Page, len(doc.Pages))
	for i, pg := range doc.Pages {
		pages[i] = strata.Page{Number: pg.Number, Text: chunk.Normalize(pg.Text)}
	}
	text := chunk.JoinPages(pages)
	if strings.TrimSpace(text) == "" {
		p.logger.Info("document empty after normalization", "document", id)
		res.Status = StatusSucceeded
		res.Stage = StageDone
		return res
	}

	// Chunking
	spans, err := p.splitter.Split(ctx, text)
	if err != nil {
		return res.fail(StageChunking, err)
	}

	// BindingContext
	chunks := chunk.BindPages(pages, spans)
	res.ChunkCount = len(chunks)

	// Embedding: batched; any failure after retries fails the whole
	// document so no record is persisted without its vector.
	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return res.fail(StageEmbedding, err)
	}

	// BuildingRecords
	now := strata.NowUnix()
	records := make([]strata.IndexRecord, len(chunks))
	for i, c := range chunks {
		records[i] = strata.IndexRecord{
			ID:         strata.RecordID(id, c.Index),
			DocumentID: id,
			Content:    c.Text,
			Pages:      c.Pages,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}

	// Writing: per-record failures are reported, siblings unaffected.
	results, err := p.writer.Upsert(ctx, records)
	if err != nil {
		return res.fail(StageWriting, err)
	}
	for _, r := range results {
		if r.Err != nil {
			res.WriteFailures = append(res.WriteFailures, r)
			p.logger.Warn("index write failed", "document", id, "record", r.ID, "error", r.Err)
		} else {
			res.RecordCount++
		}
	}

	p.logger.Info("document ingested",
		"document", id,
		"chunks", res.ChunkCount,
		"records", res.RecordCount,
		"write_failures", len(res.WriteFailures))
	res.Status = StatusSucceeded
	res.Stage = StageDone
	return res
}

// Load reads a document from the blob reader and extracts its pages using
// the extractor registered for the file extension. The document ID is the
// blob name, so re-ingesting a blob overwrites its records.
func (p *Pipeline) Load(ctx context.Context, name string) (Document, error) {
	if p.reader == nil {
		return Document{}, &strata.ConfigError{Field: "blob_reader", Reason: "not configured"}
	}
	raw, err := p.reader.Read(ctx, name)
	if err != nil {
		return Document{}, &strata.ExtractionError{Source: name, Err: err}
	}
	ext := strings.ToLower(filepath.Ext(name))
	extractor, ok := p.extractors[ext]
	if !ok {
		extractor = p.extractors[""]
	}
	pages, err := extractor.ExtractPages(raw)
	if err != nil {
		return Document{}, &strata.ExtractionError{Source: name, Err: err}
	}
	return Document{ID: name, Source: name, Pages: pages}, nil
}

// RunBatch processes documents with at most MaxConcurrent pipeline runs in
// flight. When a batch timeout is configured, documents not yet started when
// it expires are abandoned and reported as skipped; in-flight documents run
// to completion. Errors never cross document boundaries.
func (p *Pipeline) RunBatch(ctx context.Context, docs []Document) Report {
	return p.runBatch(ctx, len(docs), func(ctx context.Context, i int) DocumentResult {
		return p.Run(ctx, docs[i])
	}, func(i int) string { return docs[i].Source })
}

// RunBlobs loads each named blob and processes it. Extraction failures skip
// the document; the rest of the batch is unaffected.
func (p *Pipeline) RunBlobs(ctx context.Context, names []string) Report {
	return p.runBatch(ctx, len(names), func(ctx context.Context, i int) DocumentResult {
		doc, err := p.Load(ctx, names[i])
		if err != nil {
			p.logger.Warn("document skipped", "source", names[i], "error", err)
			return DocumentResult{
				DocumentID: names[i],
				Source:     names[i],
				Status:     StatusSkipped,
				Stage:      StageNormalizing,
				Err:        err,
			}
		}
		return p.Run(ctx, doc)
	}, func(i int) string { return names[i] })
}

func (p *Pipeline) runBatch(ctx context.Context, n int, run func(context.Context, int) DocumentResult, source func(int) string) Report {
	batchCtx := ctx
	if p.batchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, p.batchTimeout)
		defer cancel()
	}

	sem := make(chan struct{}, p.maxConcurrent)
	results := make([]DocumentResult, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		select {
		case <-batchCtx.Done():
			results[i] = DocumentResult{
				DocumentID: source(i),
				Source:     source(i),
				Status:     StatusSkipped,
				Err:        fmt.Errorf("batch abandoned: %w", batchCtx.Err()),
			}
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			// Started documents complete on the parent context: the
			// batch timeout only abandons not-yet-started work.
			results[i] = run(ctx, i)
		}(i)
	}
	wg.Wait()
	return buildReport(results)
}

// embedChunks batches chunk texts to the embedder. The vector slice is
// parallel to chunks.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []strata.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	for i := 0; i < len(chunks); i += p.batchSize {
		end := i + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-i)
		for j := i; j < end; j++ {
			texts[j-i] = chunks[j].Text
		}
		embeddings, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		if len(embeddings) != len(texts) {
			return nil, &strata.EmbeddingError{
				Err: fmt.Errorf("batch %d-%d: got %d vectors for %d texts", i, end, len(embeddings), len(texts)),
			}
		}
		copy(vectors[i:end], embeddings)
	}
	return vectors, nil
}
