package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratalab/strata"
	"github.com/stratalab/strata/blob"
	"github.com/stratalab/strata/chunk"
	"github.com/stratalab/strata/chunk/tiktoken"
	"github.com/stratalab/strata/embed/openaicompat"
	"github.com/stratalab/strata/index/memory"
	"github.com/stratalab/strata/index/postgres"
	"github.com/stratalab/strata/index/qdrant"
	"github.com/stratalab/strata/index/sqlite"
	"github.com/stratalab/strata/ingest"
	"github.com/stratalab/strata/ingest/pdf"
	"github.com/stratalab/strata/internal/config"
	"github.com/stratalab/strata/observer"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg := config.Load(os.Getenv("STRATA_CONFIG"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// 2. Observability (optional)
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		var err error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			log.Fatalf("observer init: %v", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	// 3. Embedder
	var embedder strata.Embedder = openaicompat.New(cfg.Embedding.APIKey, cfg.Embedding.Model,
		openaicompat.WithBaseURL(cfg.Embedding.BaseURL),
		openaicompat.WithDimensions(cfg.Embedding.Dimensions),
	)
	if inst != nil {
		embedder = observer.WrapEmbedding(embedder, cfg.Embedding.Model, inst)
	}

	// 4. Index writer
	writer, cleanup, err := buildWriter(ctx, cfg, cfg.Embedding.Dimensions)
	if err != nil {
		log.Fatalf("index init: %v", err)
	}
	defer cleanup()
	if inst != nil {
		writer = observer.WrapWriter(writer, cfg.Index.Backend, inst)
	}

	// 5. Tokenizer
	tok, err := tiktoken.New(cfg.Chunking.TokenizerModel)
	if err != nil {
		log.Fatalf("tokenizer: %v", err)
	}

	// 6. Pipeline
	strategy, err := chunk.ParseStrategy(cfg.Chunking.Strategy)
	if err != nil {
		log.Fatalf("chunking strategy: %v", err)
	}
	pipeline, err := ingest.New(chunk.Config{
		Strategy:            strategy,
		ChunkSize:           cfg.Chunking.ChunkSize,
		Overlap:             cfg.Chunking.Overlap,
		SimilarityThreshold: cfg.Chunking.SimilarityThreshold,
	}, embedder, writer,
		ingest.WithTokenizer(tok),
		ingest.WithBlobReader(blob.NewFSReader(cfg.Ingest.InputDir)),
		ingest.WithExtractor(".pdf", pdf.NewExtractor()),
		ingest.WithBatchSize(cfg.Ingest.BatchSize),
		ingest.WithMaxConcurrent(cfg.Ingest.MaxConcurrent),
		ingest.WithBatchTimeout(time.Duration(cfg.Ingest.BatchTimeoutMS)*time.Millisecond),
		ingest.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	// 7. Ingest every file under the input directory
	names, err := blob.NewFSReader(cfg.Ingest.InputDir).List(ctx)
	if err != nil {
		log.Fatalf("list input dir: %v", err)
	}
	if len(names) == 0 {
		log.Fatalf("no input files under %s", cfg.Ingest.InputDir)
	}

	report := pipeline.RunBlobs(ctx, names)
	printReport(report)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

func buildWriter(ctx context.Context, cfg config.Config, dims int) (strata.IndexWriter, func(), error) {
	switch cfg.Index.Backend {
	case "memory":
		return memory.New(), func() {}, nil
	case "sqlite":
		w := sqlite.New(cfg.Index.SQLitePath)
		if err := w.Init(ctx); err != nil {
			return nil, nil, err
		}
		return w, func() { _ = w.Close() }, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Index.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		w := postgres.New(pool, postgres.WithEmbeddingDimension(dims))
		if err := w.Init(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return w, pool.Close, nil
	case "qdrant":
		w := qdrant.New(qdrant.Config{
			URL:        cfg.Index.QdrantURL,
			APIKey:     cfg.Index.QdrantKey,
			Collection: cfg.Index.Collection,
		})
		if err := w.Init(ctx, dims); err != nil {
			return nil, nil, err
		}
		return w, func() {}, nil
	default:
		return nil, nil, &strata.ConfigError{Field: "index.backend", Reason: "unknown backend " + cfg.Index.Backend}
	}
}

func printReport(r ingest.Report) {
	fmt.Printf("ingested %d documents: %d succeeded, %d skipped, %d failed, %d records written\n",
		len(r.Results), r.Succeeded, r.Skipped, r.Failed, r.RecordCount)
	for _, d := range r.Results {
		switch d.Status {
		case ingest.StatusSucceeded:
			fmt.Printf("  ok   %-40s chunks=%d records=%d\n", d.Source, d.ChunkCount, d.RecordCount)
		case ingest.StatusSkipped:
			fmt.Printf("  skip %-40s %v\n", d.Source, d.Err)
		case ingest.StatusFailed:
			fmt.Printf("  fail %-40s stage=%s %v\n", d.Source, d.Stage, d.Err)
		}
	}
	if r.WriteFailureCount > 0 {
		fmt.Printf("  %d records failed to write\n", r.WriteFailureCount)
	}
}
