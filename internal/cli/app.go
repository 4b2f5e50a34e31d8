package cli

import (
	"fmt"
	"log/slog"

	"studyrag/config"
	"studyrag/internal/adapter/analyzer"
	"studyrag/internal/adapter/chunker"
	"studyrag/internal/adapter/embedding"
	"studyrag/internal/adapter/index"
	"studyrag/internal/adapter/llm"
	"studyrag/internal/adapter/parser"
	"studyrag/internal/adapter/store"
	"studyrag/internal/adapter/synthesis"
	"studyrag/internal/port"
	"studyrag/internal/usecase"
)

// app wires the adapters and use cases for one CLI invocation. All
// dependencies are constructed once here and passed in explicitly.
type app struct {
	store   *store.BoltStore
	index   *index.MemoryIndex
	scheme  store.SchemeInfo
	ingest  *usecase.IngestUseCase
	query   *usecase.QueryUseCase
	library *usecase.LibraryUseCase
}

func newApp(cfg *config.Config, dir string) (*app, error) {
	if err := config.EnsureDataDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewBoltStore(config.LibraryDBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to open library store: %w", err)
	}

	embedder, err := newEmbedder(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	scheme := embedderScheme(cfg, embedder)
	migration, err := st.CheckScheme(scheme)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to check embedding scheme: %w", err)
	}
	if migration.NeedsReingest {
		st.Close()
		return nil, fmt.Errorf("%s: delete %s and re-ingest your books", migration.Reason, config.LibraryDBPath(dir))
	}

	idx := index.NewMemoryIndex(embedder.Dimension())
	logger := slog.Default()

	library := usecase.NewLibraryUseCase(st, idx, logger)
	if _, err := library.ReloadIndex(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to rebuild vector index: %w", err)
	}

	tokenizer := analyzer.NewTokenizer()
	chk := chunker.NewPageChunker(cfg.Chunking.MaxTokens, tokenizer)

	llmClient := llm.NewOpenAIClient(llm.Options{
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	synthesizer, err := synthesis.New(llmClient)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		store:   st,
		index:   idx,
		scheme:  scheme,
		ingest:  usecase.NewIngestUseCase(parser.NewAutoParser(), chk, embedder, st, idx, logger),
		query:   usecase.NewQueryUseCase(embedder, idx, st, synthesizer),
		library: library,
	}, nil
}

func (a *app) close() {
	a.store.Close()
}

// embedderScheme describes the scheme of the embedder actually constructed.
// The same value must be both checked at startup and recorded after an
// ingest; deriving either side from raw config fields would diverge whenever
// the embedder applies a default.
func embedderScheme(cfg *config.Config, e port.Embedder) store.SchemeInfo {
	return store.SchemeInfo{
		Provider:  cfg.Embedding.Provider,
		Model:     e.ModelName(),
		Dimension: e.Dimension(),
	}
}

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai", "":
		return embedding.NewClient(embedding.Options{
			APIKeyEnv:  cfg.Embedding.APIKeyEnv,
			Model:      cfg.Embedding.Model,
			BaseURL:    cfg.Embedding.BaseURL,
			InputType:  cfg.Embedding.InputType,
			Dimension:  cfg.Embedding.Dimension,
			BatchSize:  cfg.Embedding.BatchSize,
			BatchDelay: cfg.Embedding.BatchDelay(),
		}), nil
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}
