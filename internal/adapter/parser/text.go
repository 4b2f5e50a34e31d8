package parser

import (
	"context"
	"io"
	"strings"

	"studyrag/internal/domain"
)

// TextParser treats plain text as a document. Form feeds delimit pages;
// without them the whole input is a single page.
type TextParser struct{}

func NewTextParser() *TextParser {
	return &TextParser{}
}

func (p *TextParser) Parse(ctx context.Context, src io.ReaderAt, size int64) (domain.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.ParsedDocument{}, err
	}

	data := make([]byte, size)
	if _, err := src.ReadAt(data, 0); err != nil && err != io.EOF {
		return domain.ParsedDocument{}, &domain.ParseError{Reason: "read failed", Err: err}
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return domain.ParsedDocument{}, &domain.ParseError{Reason: "document is empty"}
	}

	var doc domain.ParsedDocument
	for i, pageText := range strings.Split(content, "\f") {
		doc.Pages = append(doc.Pages, domain.Page{Number: i + 1, Text: pageText})
	}

	return doc, nil
}
