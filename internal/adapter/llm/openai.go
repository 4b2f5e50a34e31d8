package llm

import (
	"context"
	"fmt"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// OpenAIClient generates completions from an OpenAI-compatible chat
// endpoint. The API key is resolved lazily at the first call so the rest
// of the application stays usable without the provider configured.
type OpenAIClient struct {
	apiKeyEnv   string
	model       string
	baseURL     string
	maxTokens   int
	temperature float32

	once    sync.Once
	client  *openai.Client
	initErr error
}

type Options struct {
	APIKeyEnv   string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

func NewOpenAIClient(opts Options) *OpenAIClient {
	return &OpenAIClient{
		apiKeyEnv:   opts.APIKeyEnv,
		model:       opts.Model,
		baseURL:     opts.BaseURL,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

func (c *OpenAIClient) init() {
	apiKey := os.Getenv(c.apiKeyEnv)
	if apiKey == "" {
		c.initErr = &domain.ConfigurationError{
			Reason: fmt.Sprintf("LLM API key not set in environment variable %s", c.apiKeyEnv),
		}
		return
	}
	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	c.client = openai.NewClientWithConfig(cfg)
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (port.Completion, error) {
	c.once.Do(c.init)
	if c.initErr != nil {
		return port.Completion{}, c.initErr
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return port.Completion{}, &domain.SynthesisError{Reason: "completion request failed", Err: err}
	}

	if len(resp.Choices) == 0 {
		return port.Completion{}, &domain.SynthesisError{Reason: "provider returned no choices"}
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return port.Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
		Usage: domain.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *OpenAIClient) ModelName() string { return c.model }

var _ port.LLM = (*OpenAIClient)(nil)
