package port

import (
	"context"

	"studyrag/internal/domain"
)

// Completion is one LLM response with provider token accounting.
type Completion struct {
	Text  string
	Model string
	Usage domain.TokenUsage
}

// LLM represents a language model completion endpoint.
type LLM interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (Completion, error)

	ModelName() string
}

// Synthesizer produces a grounded answer from retrieved chunks.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, chunks []domain.ScoredChunk) (domain.Answer, error)
}
