package embedding

import (
	"context"
	"time"

	"studyrag/internal/port"
)

// MockEmbedder produces deterministic vectors derived from the input text.
// Identical texts embed identically, which makes similarity assertions
// possible in tests without a provider.
type MockEmbedder struct {
	dimension int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 1536
	}
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e *MockEmbedder) EmbedMany(ctx context.Context, texts []string, onProgress port.BatchProgressFunc) (port.EmbedResult, error) {
	started := time.Now()
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	if onProgress != nil {
		onProgress(len(texts), len(texts))
	}
	return port.EmbedResult{Vectors: vectors, ProcessingTime: time.Since(started)}, nil
}

func (e *MockEmbedder) embed(text string) []float32 {
	vector := make([]float32, e.dimension)
	for i, r := range text {
		vector[i%e.dimension] += float32(r) / 1000.0
	}
	return vector
}

func (e *MockEmbedder) Dimension() int { return e.dimension }

func (e *MockEmbedder) ModelName() string { return "mock" }

var _ port.Embedder = (*MockEmbedder)(nil)
