package embedding

import (
	"context"
	"testing"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(4)

	a, err := e.EmbedOne(context.Background(), "osmosis")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.EmbedOne(context.Background(), "osmosis")
	if err != nil {
		t.Fatal(err)
	}

	if len(a) != 4 {
		t.Fatalf("expected dimension 4, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("identical texts must embed identically: %v vs %v", a, b)
		}
	}
}

func TestMockEmbedderDefaultsDimension(t *testing.T) {
	e := NewMockEmbedder(0)

	if e.Dimension() != 1536 {
		t.Fatalf("expected defaulted dimension 1536, got %d", e.Dimension())
	}

	vector, err := e.EmbedOne(context.Background(), "text")
	if err != nil {
		t.Fatal(err)
	}
	if len(vector) != 1536 {
		t.Errorf("expected 1536-dim vector, got %d", len(vector))
	}
}
