package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Index     IndexConfig     `toml:"index"`
	Ingest    IngestConfig    `toml:"ingest"`
	Observer  ObserverConfig  `toml:"observer"`
}

type ChunkingConfig struct {
	Strategy            string  `toml:"strategy"`
	ChunkSize           int     `toml:"chunk_size"`
	Overlap             int     `toml:"overlap"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	TokenizerModel      string  `toml:"tokenizer_model"`
}

type EmbeddingConfig struct {
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"api_key"`
}

type IndexConfig struct {
	// Backend selects the writer: memory, sqlite, postgres, or qdrant.
	Backend     string `toml:"backend"`
	SQLitePath  string `toml:"sqlite_path"`
	PostgresURL string `toml:"postgres_url"`
	QdrantURL   string `toml:"qdrant_url"`
	QdrantKey   string `toml:"qdrant_api_key"`
	Collection  string `toml:"collection"`
}

type IngestConfig struct {
	InputDir       string `toml:"input_dir"`
	BatchSize      int    `toml:"batch_size"`
	MaxConcurrent  int    `toml:"max_concurrent"`
	BatchTimeoutMS int    `toml:"batch_timeout_ms"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			Strategy:            "recursive",
			ChunkSize:           1000,
			Overlap:             200,
			SimilarityThreshold: 0.8,
			TokenizerModel:      "cl100k_base",
		},
		Embedding: EmbeddingConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		Index: IndexConfig{
			Backend:    "sqlite",
			SQLitePath: "strata.db",
			Collection: "strata",
		},
		Ingest: IngestConfig{
			InputDir:      "docs",
			BatchSize:     64,
			MaxConcurrent: 4,
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "strata.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("STRATA_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("STRATA_EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("STRATA_POSTGRES_URL"); v != "" {
		cfg.Index.PostgresURL = v
	}
	if v := os.Getenv("STRATA_QDRANT_URL"); v != "" {
		cfg.Index.QdrantURL = v
	}
	if v := os.Getenv("STRATA_QDRANT_API_KEY"); v != "" {
		cfg.Index.QdrantKey = v
	}
	if v := os.Getenv("STRATA_INPUT_DIR"); v != "" {
		cfg.Ingest.InputDir = v
	}
	if v := os.Getenv("STRATA_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Chunking.ChunkSize = n
		}
	}
	if os.Getenv("STRATA_OBSERVER_ENABLED") == "true" || os.Getenv("STRATA_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
