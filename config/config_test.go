package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.MaxTokens != 500 {
		t.Errorf("expected max_tokens 500, got %d", cfg.Chunking.MaxTokens)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("expected openai provider, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("expected dimension 1536, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.BatchDelay() != 200*time.Millisecond {
		t.Errorf("expected 200ms batch delay, got %s", cfg.Embedding.BatchDelay())
	}
	if cfg.Query.TopK != 5 {
		t.Errorf("expected top_k 5, got %d", cfg.Query.TopK)
	}
	if len(cfg.Ingest.Includes) == 0 {
		t.Error("expected default include patterns")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.Model)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyrag.yaml")
	content := `
chunking:
  max_tokens: 250
embedding:
  model: text-embedding-3-large
  dimension: 3072
query:
  top_k: 8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Chunking.MaxTokens != 250 {
		t.Errorf("override lost: max_tokens = %d", cfg.Chunking.MaxTokens)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("override lost: model = %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dimension != 3072 {
		t.Errorf("override lost: dimension = %d", cfg.Embedding.Dimension)
	}
	if cfg.Query.TopK != 8 {
		t.Errorf("override lost: top_k = %d", cfg.Query.TopK)
	}

	// Untouched keys keep their defaults.
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("default lost: provider = %q", cfg.Embedding.Provider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("default lost: llm model = %q", cfg.LLM.Model)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("chunking: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Query.TopK != 5 {
		t.Error("empty dir should yield defaults")
	}

	content := "query:\n  top_k: 3\n"
	if err := os.WriteFile(filepath.Join(dir, "studyrag.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Query.TopK != 3 {
		t.Errorf("studyrag.yaml not picked up, top_k = %d", cfg.Query.TopK)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studyrag.yaml")

	cfg := DefaultConfig()
	cfg.Query.TopK = 7
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Query.TopK != 7 {
		t.Errorf("round trip lost value: top_k = %d", loaded.Query.TopK)
	}
}
