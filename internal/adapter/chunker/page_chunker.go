package chunker

import (
	"strings"

	"studyrag/internal/adapter/analyzer"
	"studyrag/internal/domain"
)

// PageChunker splits a parsed document into page-bounded chunks. Whole
// pages are packed greedily up to the token budget; a page that alone
// exceeds the budget is split further at sentence boundaries, with every
// piece bounded to that single page. Chunks never overlap and together
// cover every page of the input.
type PageChunker struct {
	maxTokens int
	tokenizer *analyzer.Tokenizer
}

func NewPageChunker(maxTokens int, tokenizer *analyzer.Tokenizer) *PageChunker {
	return &PageChunker{
		maxTokens: maxTokens,
		tokenizer: tokenizer,
	}
}

func (c *PageChunker) Chunk(doc domain.ParsedDocument) ([]domain.Chunk, error) {
	pages := doc.Pages
	if len(pages) == 0 {
		return nil, &domain.ParseError{Reason: "document has no pages"}
	}

	var chunks []domain.Chunk
	carryStart := 0 // page number of a leading empty range waiting for text

	appendChunk := func(chunk domain.Chunk) {
		if carryStart > 0 {
			chunk.PageStart = carryStart
			carryStart = 0
		}
		chunks = append(chunks, chunk)
	}

	i := 0
	for i < len(pages) {
		if c.tokenizer.CountTokens(pages[i].Text) > c.maxTokens {
			for _, piece := range c.splitPage(pages[i]) {
				appendChunk(piece)
			}
			i++
			continue
		}

		start := i
		total := 0
		var text strings.Builder
		for i < len(pages) {
			n := c.tokenizer.CountTokens(pages[i].Text)
			if n > c.maxTokens {
				break
			}
			if total > 0 && total+n > c.maxTokens {
				break
			}
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(pages[i].Text)
			total += n
			i++
		}

		chunk := domain.Chunk{
			PageStart: pages[start].Number,
			PageEnd:   pages[i-1].Number,
			Text:      strings.TrimSpace(text.String()),
		}

		if chunk.Text == "" {
			// Empty page range: fold into a neighboring chunk so coverage
			// has no gaps.
			if len(chunks) > 0 {
				chunks[len(chunks)-1].PageEnd = chunk.PageEnd
			} else if carryStart == 0 {
				carryStart = chunk.PageStart
			}
			continue
		}

		chunk.TokenCount = c.tokenizer.CountTokens(chunk.Text)
		chunk.Section = sectionLabel(chunk.Text)
		appendChunk(chunk)
	}

	if len(chunks) == 0 {
		return nil, &domain.ParseError{Reason: "no text content to chunk"}
	}
	if carryStart > 0 {
		// Entirely-empty leading pages with no chunk after them cannot
		// happen once a chunk exists; a trailing remnant folds backwards.
		chunks[len(chunks)-1].PageStart = carryStart
	}

	return chunks, nil
}

// splitPage splits one oversized page into multiple chunks, each bounded
// to that page and within the token budget.
func (c *PageChunker) splitPage(page domain.Page) []domain.Chunk {
	sentences := c.tokenizer.SplitSentences(page.Text)

	var pieces []string
	var current strings.Builder
	total := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			pieces = append(pieces, s)
		}
		current.Reset()
		total = 0
	}

	for _, sentence := range sentences {
		n := c.tokenizer.CountTokens(sentence)
		if n > c.maxTokens {
			flush()
			pieces = append(pieces, c.splitWords(sentence)...)
			continue
		}
		if total > 0 && total+n > c.maxTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		total += n
	}
	flush()

	section := sectionLabel(page.Text)
	chunks := make([]domain.Chunk, 0, len(pieces))
	for _, text := range pieces {
		chunks = append(chunks, domain.Chunk{
			PageStart:  page.Number,
			PageEnd:    page.Number,
			Section:    section,
			Text:       text,
			TokenCount: c.tokenizer.CountTokens(text),
		})
	}
	return chunks
}

// splitWords is the last resort for a single sentence over budget.
func (c *PageChunker) splitWords(sentence string) []string {
	words := strings.Fields(sentence)

	var pieces []string
	var current strings.Builder
	total := 0

	for _, word := range words {
		n := c.tokenizer.CountTokens(word)
		if total > 0 && total+n > c.maxTokens {
			pieces = append(pieces, current.String())
			current.Reset()
			total = 0
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
		total += n
	}
	if current.Len() > 0 {
		pieces = append(pieces, current.String())
	}

	return pieces
}

var sectionPrefixes = []string{"chapter", "section", "unit", "part", "module", "lesson"}

// sectionLabel derives a best-effort section label from the leading lines
// of the text. Returns "" when nothing looks like a heading.
func sectionLabel(text string) string {
	lines := strings.Split(text, "\n")
	checked := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		checked++
		if checked > 3 {
			break
		}
		if len(line) > 80 {
			continue
		}
		lower := strings.ToLower(line)
		for _, prefix := range sectionPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return line
			}
		}
		if isMostlyUpper(line) {
			return line
		}
	}
	return ""
}

func isMostlyUpper(line string) bool {
	letters, upper := 0, 0
	for _, r := range line {
		if 'a' <= r && r <= 'z' {
			letters++
		} else if 'A' <= r && r <= 'Z' {
			letters++
			upper++
		}
	}
	return letters >= 3 && upper*10 >= letters*8
}
