package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studyrag/internal/domain"
)

const testKeyEnv = "STUDYRAG_TEST_EMBED_KEY"

func newTestClient(t *testing.T, handler http.HandlerFunc, batchSize int) *Client {
	t.Helper()
	t.Setenv(testKeyEnv, "test-key")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{
		APIKeyEnv: testKeyEnv,
		Model:     "test-model",
		BaseURL:   server.URL,
		Dimension: 3,
		BatchSize: batchSize,
	})
}

// openaiHandler answers in the flat data[].embedding shape, deliberately
// returning items out of order to exercise index-based reassembly.
func openaiHandler(t *testing.T, requests *[][]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		*requests = append(*requests, req.Input)

		items := make([]map[string]any, len(req.Input))
		for i, text := range req.Input {
			items[len(req.Input)-1-i] = map[string]any{
				"embedding": []float32{float32(len(text)), 0, 0},
				"index":     i,
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": items})
	}
}

func TestEmbedManyOrderPreservedAcrossBatches(t *testing.T) {
	var requests [][]string
	client := newTestClient(t, openaiHandler(t, &requests), 2)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	result, err := client.EmbedMany(context.Background(), texts, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(requests) != 3 {
		t.Errorf("expected 3 batches for 5 texts at size 2, got %d", len(requests))
	}
	if len(result.Vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(result.Vectors))
	}
	for i, text := range texts {
		if result.Vectors[i][0] != float32(len(text)) {
			t.Errorf("vector %d does not match input %q: got %v", i, text, result.Vectors[i])
		}
	}
}

func TestEmbedManyProgress(t *testing.T) {
	var requests [][]string
	client := newTestClient(t, openaiHandler(t, &requests), 2)

	var calls [][2]int
	_, err := client.EmbedMany(context.Background(), []string{"a", "b", "c"}, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	if err != nil {
		t.Fatal(err)
	}

	want := [][2]int{{2, 3}, {3, 3}}
	if len(calls) != len(want) {
		t.Fatalf("expected %d progress calls, got %d: %v", len(want), len(calls), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d: got %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestEmbedManyNestedShape(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)

		vectors := make([][]float32, len(req.Input))
		for i := range req.Input {
			vectors[i] = []float32{float32(i), 1, 2}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": map[string]any{"float": vectors},
		})
	}
	client := newTestClient(t, handler, 10)

	result, err := client.EmbedMany(context.Background(), []string{"x", "y"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(result.Vectors))
	}
	if result.Vectors[1][0] != 1 {
		t.Errorf("nested shape not mapped positionally: %v", result.Vectors)
	}
}

func TestEmbedManyUnrecognizedShape(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"vectors": [[1, 2, 3]]}`)
	}
	client := newTestClient(t, handler, 2)

	_, err := client.EmbedMany(context.Background(), []string{"a", "b", "c"}, nil)
	if err == nil {
		t.Fatal("expected error for unrecognized response shape")
	}

	var embErr *domain.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %T: %v", err, err)
	}
	if embErr.Batch != 0 {
		t.Errorf("expected failure in batch 0, got batch %d", embErr.Batch)
	}
}

func TestEmbedManySecondBatchFailureIdentified(t *testing.T) {
	count := 0
	var requests [][]string
	ok := openaiHandler(t, &requests)
	handler := func(w http.ResponseWriter, r *http.Request) {
		count++
		if count == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error": {"message": "boom"}}`)
			return
		}
		ok(w, r)
	}
	client := newTestClient(t, handler, 2)

	_, err := client.EmbedMany(context.Background(), []string{"a", "b", "c", "d"}, nil)
	var embErr *domain.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
	if embErr.Batch != 1 {
		t.Errorf("expected failure in batch 1, got batch %d", embErr.Batch)
	}
}

func TestEmbedManyBatchPacing(t *testing.T) {
	t.Setenv(testKeyEnv, "test-key")

	delay := 50 * time.Millisecond
	var requests [][]string
	var arrivals []time.Time
	ok := openaiHandler(t, &requests)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		arrivals = append(arrivals, time.Now())
		ok(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(Options{
		APIKeyEnv:  testKeyEnv,
		Model:      "test-model",
		BaseURL:    server.URL,
		BatchSize:  1,
		BatchDelay: delay,
	})

	_, err := client.EmbedMany(context.Background(), []string{"a", "b", "c"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(arrivals) != 3 {
		t.Fatalf("expected 3 batch requests, got %d", len(arrivals))
	}
	for i := 1; i < len(arrivals); i++ {
		if gap := arrivals[i].Sub(arrivals[i-1]); gap < delay {
			t.Errorf("batch %d arrived %s after batch %d, want at least %s", i, gap, i-1, delay)
		}
	}
}

func TestEmbedManyCancelledDuringPacing(t *testing.T) {
	var requests [][]string
	client := newTestClient(t, openaiHandler(t, &requests), 1)
	client.batchDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.EmbedMany(ctx, []string{"a", "b"}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error during the pacing wait, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancellation took %s, pacing wait was not interrupted", elapsed)
	}
	if len(requests) != 1 {
		t.Errorf("expected only the first batch to be sent, got %d", len(requests))
	}
}

func TestEmbedMissingKeyIsConfigurationError(t *testing.T) {
	t.Setenv(testKeyEnv, "")
	client := NewClient(Options{APIKeyEnv: testKeyEnv, Model: "m"})

	_, err := client.EmbedOne(context.Background(), "text")
	var cfgErr *domain.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestEmbedManyEmptyInput(t *testing.T) {
	client := NewClient(Options{APIKeyEnv: testKeyEnv, Model: "m"})

	result, err := client.EmbedMany(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(result.Vectors))
	}
}
