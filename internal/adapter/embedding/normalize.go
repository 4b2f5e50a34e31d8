package embedding

import (
	"encoding/json"
	"fmt"
)

// Providers disagree on the embedding response layout. Exactly two shapes
// are recognized:
//
//	{"data": [{"embedding": [...], "index": 0}, ...]}   (OpenAI-style)
//	{"embeddings": {"float": [[...], ...]}}             (nested-by-type)
//
// Anything else is an error, never a guess.
type wireResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Embeddings struct {
		Float [][]float32 `json:"float"`
	} `json:"embeddings"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// normalizeResponse decodes a provider response into vectors positionally
// matching the request's texts.
func normalizeResponse(raw []byte, want int) ([][]float32, error) {
	var resp wireResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unparseable response body: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("provider error: %s", resp.Error.Message)
	}

	switch {
	case len(resp.Data) > 0:
		vectors := make([][]float32, want)
		for _, item := range resp.Data {
			if item.Index < 0 || item.Index >= want {
				return nil, fmt.Errorf("embedding index %d out of range for %d inputs", item.Index, want)
			}
			vectors[item.Index] = item.Embedding
		}
		for i, v := range vectors {
			if len(v) == 0 {
				return nil, fmt.Errorf("missing embedding for input %d", i)
			}
		}
		return vectors, nil

	case len(resp.Embeddings.Float) > 0:
		if len(resp.Embeddings.Float) != want {
			return nil, fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings.Float), want)
		}
		return resp.Embeddings.Float, nil

	default:
		return nil, fmt.Errorf("unrecognized response shape")
	}
}
