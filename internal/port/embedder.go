package port

import (
	"context"
	"time"
)

// BatchProgressFunc is called after each completed embedding batch with the
// number of items embedded so far and the total.
type BatchProgressFunc func(done, total int)

// EmbedResult carries the vectors for one EmbedMany call, positionally
// matching the input texts, plus the wall-clock time spent.
type EmbedResult struct {
	Vectors        [][]float32
	ProcessingTime time.Duration
}

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	// EmbedOne embeds a single text.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// EmbedMany embeds texts in order, batching internally. The result is
	// one-to-one with the input. A batch fully succeeds or fully fails.
	EmbedMany(ctx context.Context, texts []string, onProgress BatchProgressFunc) (EmbedResult, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
