package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// Client is an OpenAI-compatible embedding client. EmbedMany batches its
// input in fixed-size groups issued sequentially with a pacing delay
// between batches. Result order always matches input order.
type Client struct {
	apiKeyEnv  string
	model      string
	baseURL    string
	inputType  string
	dimension  int
	batchSize  int
	batchDelay time.Duration
	httpClient *http.Client
}

type Options struct {
	APIKeyEnv  string
	Model      string
	BaseURL    string
	InputType  string
	Dimension  int
	BatchSize  int
	BatchDelay time.Duration
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	if opts.Dimension <= 0 {
		opts.Dimension = 1536
	}
	return &Client{
		apiKeyEnv:  opts.APIKeyEnv,
		model:      opts.Model,
		baseURL:    opts.BaseURL,
		inputType:  opts.InputType,
		dimension:  opts.Dimension,
		batchSize:  opts.BatchSize,
		batchDelay: opts.BatchDelay,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type embeddingRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type,omitempty"`
}

func (c *Client) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embedBatch(ctx, 0, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *Client) EmbedMany(ctx context.Context, texts []string, onProgress port.BatchProgressFunc) (port.EmbedResult, error) {
	started := time.Now()
	result := port.EmbedResult{Vectors: make([][]float32, 0, len(texts))}
	if len(texts) == 0 {
		return result, nil
	}

	for i, batchNum := 0, 0; i < len(texts); i, batchNum = i+c.batchSize, batchNum+1 {
		if batchNum > 0 && c.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return port.EmbedResult{}, ctx.Err()
			case <-time.After(c.batchDelay):
			}
		}

		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := c.embedBatch(ctx, batchNum, texts[i:end])
		if err != nil {
			return port.EmbedResult{}, err
		}
		result.Vectors = append(result.Vectors, vectors...)

		if onProgress != nil {
			onProgress(end, len(texts))
		}
	}

	result.ProcessingTime = time.Since(started)
	return result, nil
}

func (c *Client) embedBatch(ctx context.Context, batch int, texts []string) ([][]float32, error) {
	apiKey := os.Getenv(c.apiKeyEnv)
	if apiKey == "" {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Sprintf("embedding API key not set in environment variable %s", c.apiKeyEnv),
		}
	}

	body, err := json.Marshal(embeddingRequest{
		Input:     texts,
		Model:     c.model,
		InputType: c.inputType,
	})
	if err != nil {
		return nil, &domain.EmbeddingError{Batch: batch, Reason: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &domain.EmbeddingError{Batch: batch, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.EmbeddingError{Batch: batch, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.EmbeddingError{Batch: batch, Reason: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		preview := string(raw)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return nil, &domain.EmbeddingError{
			Batch:  batch,
			Reason: fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, preview),
		}
	}

	vectors, err := normalizeResponse(raw, len(texts))
	if err != nil {
		return nil, &domain.EmbeddingError{Batch: batch, Reason: "normalize response", Err: err}
	}

	return vectors, nil
}

func (c *Client) Dimension() int { return c.dimension }

func (c *Client) ModelName() string { return c.model }

var _ port.Embedder = (*Client)(nil)
