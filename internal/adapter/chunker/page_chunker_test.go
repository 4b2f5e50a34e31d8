package chunker

import (
	"strings"
	"testing"

	"studyrag/internal/adapter/analyzer"
	"studyrag/internal/domain"
)

func makeDoc(pages ...string) domain.ParsedDocument {
	doc := domain.ParsedDocument{}
	for i, text := range pages {
		doc.Pages = append(doc.Pages, domain.Page{Number: i + 1, Text: text})
	}
	return doc
}

func TestChunkCoverage(t *testing.T) {
	c := NewPageChunker(500, analyzer.NewTokenizer())

	doc := makeDoc(
		"The cell is the basic unit of life.",
		"Mitochondria produce energy for the cell.",
		"Osmosis moves water across membranes.",
	)

	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	// Page ranges must cover 1..N with no gaps and no overlaps.
	next := 1
	for _, chunk := range chunks {
		if chunk.PageStart != next {
			t.Errorf("expected chunk to start at page %d, got %d", next, chunk.PageStart)
		}
		if chunk.PageEnd < chunk.PageStart {
			t.Errorf("PageEnd (%d) < PageStart (%d)", chunk.PageEnd, chunk.PageStart)
		}
		next = chunk.PageEnd + 1
	}
	if next != doc.PageCount()+1 {
		t.Errorf("coverage ends at page %d, want %d", next-1, doc.PageCount())
	}
}

func TestChunkCoverageWithOversizedPage(t *testing.T) {
	c := NewPageChunker(50, analyzer.NewTokenizer())

	big := strings.Repeat("This sentence has exactly eight words in total. ", 30)
	doc := makeDoc("Small first page.", big, "Small last page.")

	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}

	covered := make(map[int]bool)
	for _, chunk := range chunks {
		for p := chunk.PageStart; p <= chunk.PageEnd; p++ {
			covered[p] = true
		}
	}
	for p := 1; p <= 3; p++ {
		if !covered[p] {
			t.Errorf("page %d not covered by any chunk", p)
		}
	}
}

func TestTokenCeiling(t *testing.T) {
	maxTokens := 50
	c := NewPageChunker(maxTokens, analyzer.NewTokenizer())
	tok := analyzer.NewTokenizer()

	big := strings.Repeat("Plants convert sunlight into chemical energy. ", 40)
	doc := makeDoc(big)

	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}

	for i, chunk := range chunks {
		if chunk.TokenCount > maxTokens {
			t.Errorf("chunk %d has %d tokens, exceeds ceiling %d", i, chunk.TokenCount, maxTokens)
		}
		if got := tok.CountTokens(chunk.Text); got > maxTokens {
			t.Errorf("chunk %d recounts to %d tokens, exceeds ceiling %d", i, got, maxTokens)
		}
	}
}

func TestOversizedPageSplitBoundedToPage(t *testing.T) {
	// A 10-page document where one page holds ~1200 tokens under a
	// 500-token ceiling: that page must split into at least 3 chunks, all
	// bounded to that single page.
	tok := analyzer.NewTokenizer()
	sentence := "The nitrogen cycle describes how nitrogen moves between the atmosphere and living organisms. "
	var big strings.Builder
	for tok.CountTokens(big.String()) < 1200 {
		big.WriteString(sentence)
	}

	pages := make([]string, 10)
	for i := range pages {
		pages[i] = "A short page about general science topics."
	}
	pages[4] = big.String()

	c := NewPageChunker(500, tok)
	chunks, err := c.Chunk(makeDoc(pages...))
	if err != nil {
		t.Fatal(err)
	}

	var onPage5 []domain.Chunk
	for _, chunk := range chunks {
		if chunk.PageStart == 5 || chunk.PageEnd == 5 {
			onPage5 = append(onPage5, chunk)
		}
	}

	if len(onPage5) < 3 {
		t.Fatalf("expected oversized page split into >= 3 chunks, got %d", len(onPage5))
	}
	for _, chunk := range onPage5 {
		if chunk.PageStart != 5 || chunk.PageEnd != 5 {
			t.Errorf("oversized page chunk spans pages %d-%d, want 5-5", chunk.PageStart, chunk.PageEnd)
		}
		if chunk.TokenCount > 500 {
			t.Errorf("oversized page chunk has %d tokens, exceeds 500", chunk.TokenCount)
		}
	}
}

func TestEmptyPagesFoldIntoNeighbors(t *testing.T) {
	c := NewPageChunker(500, analyzer.NewTokenizer())

	doc := makeDoc("", "Actual content on the second page.", "")

	chunks, err := c.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageStart != 1 || chunks[0].PageEnd != 3 {
		t.Errorf("expected chunk to cover pages 1-3, got %d-%d", chunks[0].PageStart, chunks[0].PageEnd)
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	c := NewPageChunker(500, analyzer.NewTokenizer())

	if _, err := c.Chunk(domain.ParsedDocument{}); err == nil {
		t.Error("expected error for document with no pages")
	}

	if _, err := c.Chunk(makeDoc("", "", "")); err == nil {
		t.Error("expected error for document with no text")
	}
}

func TestSectionLabel(t *testing.T) {
	if got := sectionLabel("Chapter 3: Thermodynamics\nHeat flows from hot to cold."); got != "Chapter 3: Thermodynamics" {
		t.Errorf("expected chapter heading, got %q", got)
	}
	if got := sectionLabel("PHOTOSYNTHESIS\nThe process by which plants make food."); got != "PHOTOSYNTHESIS" {
		t.Errorf("expected uppercase heading, got %q", got)
	}
	if got := sectionLabel("just an ordinary paragraph of body text here."); got != "" {
		t.Errorf("expected no section label, got %q", got)
	}
}
