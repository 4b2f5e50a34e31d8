package llm

import (
	"context"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// MockLLM returns a fixed answer and counts calls.
type MockLLM struct {
	Response string
	Err      error
	Calls    int
	Prompts  []string
}

func (m *MockLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (port.Completion, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, userPrompt)
	if m.Err != nil {
		return port.Completion{}, m.Err
	}
	return port.Completion{
		Text:  m.Response,
		Model: "mock",
		Usage: domain.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (m *MockLLM) ModelName() string { return "mock" }

var _ port.LLM = (*MockLLM)(nil)
