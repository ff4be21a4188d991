package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Chunking.Strategy != "recursive" {
		t.Errorf("expected recursive, got %s", cfg.Chunking.Strategy)
	}
	if cfg.Chunking.ChunkSize != 1000 {
		t.Errorf("expected chunk size 1000, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Embedding.Dimensions != 1536 {
		t.Errorf("expected 1536, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Index.Backend != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.Index.Backend)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[chunking]
strategy = "token"
chunk_size = 512

[index]
backend = "qdrant"
qdrant_url = "http://localhost:6333"
`), 0644)

	cfg := Load(path)
	if cfg.Chunking.Strategy != "token" {
		t.Errorf("expected token, got %s", cfg.Chunking.Strategy)
	}
	if cfg.Chunking.ChunkSize != 512 {
		t.Errorf("expected 512, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Index.Backend != "qdrant" {
		t.Errorf("expected qdrant, got %s", cfg.Index.Backend)
	}
	// Defaults preserved
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("default should be preserved, got %s", cfg.Embedding.Model)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("STRATA_EMBEDDING_API_KEY", "env-key")
	t.Setenv("STRATA_CHUNK_SIZE", "256")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Embedding.APIKey != "env-key" {
		t.Errorf("expected env-key, got %s", cfg.Embedding.APIKey)
	}
	if cfg.Chunking.ChunkSize != 256 {
		t.Errorf("expected 256, got %d", cfg.Chunking.ChunkSize)
	}
}

func TestEnvOverrideIgnoresBadNumber(t *testing.T) {
	t.Setenv("STRATA_CHUNK_SIZE", "not-a-number")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Chunking.ChunkSize != 1000 {
		t.Errorf("expected default 1000, got %d", cfg.Chunking.ChunkSize)
	}
}
