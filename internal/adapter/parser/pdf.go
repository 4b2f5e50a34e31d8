package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"studyrag/internal/domain"
)

// PDFParser extracts per-page plain text from a PDF.
type PDFParser struct{}

func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

func (p *PDFParser) Parse(ctx context.Context, src io.ReaderAt, size int64) (domain.ParsedDocument, error) {
	reader, err := pdf.NewReader(src, size)
	if err != nil {
		return domain.ParsedDocument{}, &domain.ParseError{Reason: "unreadable pdf", Err: err}
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return domain.ParsedDocument{}, &domain.ParseError{Reason: "pdf has no pages"}
	}

	doc := domain.ParsedDocument{Pages: make([]domain.Page, 0, numPages)}
	empty := 0

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return domain.ParsedDocument{}, err
		}

		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			extracted, err := page.GetPlainText(nil)
			if err != nil {
				return domain.ParsedDocument{}, &domain.ParseError{
					Reason: fmt.Sprintf("text extraction failed on page %d", i),
					Err:    err,
				}
			}
			text = extracted
		}
		if strings.TrimSpace(text) == "" {
			empty++
		}
		doc.Pages = append(doc.Pages, domain.Page{Number: i, Text: text})
	}

	if empty == numPages {
		return domain.ParsedDocument{}, &domain.ParseError{Reason: "no extractable text in any page"}
	}

	return doc, nil
}
