package parser

import (
	"context"
	"io"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

var pdfMagic = []byte("%PDF-")

// AutoParser sniffs the document format and delegates to the matching
// parser. PDFs are recognized by their leading magic bytes; everything
// else is treated as plain text.
type AutoParser struct {
	pdf  *PDFParser
	text *TextParser
}

func NewAutoParser() *AutoParser {
	return &AutoParser{
		pdf:  NewPDFParser(),
		text: NewTextParser(),
	}
}

func (p *AutoParser) Parse(ctx context.Context, src io.ReaderAt, size int64) (domain.ParsedDocument, error) {
	if size == 0 {
		return domain.ParsedDocument{}, &domain.ParseError{Reason: "document is empty"}
	}

	header := make([]byte, len(pdfMagic))
	if size >= int64(len(header)) {
		if _, err := src.ReadAt(header, 0); err != nil {
			return domain.ParsedDocument{}, &domain.ParseError{Reason: "read failed", Err: err}
		}
		if string(header) == string(pdfMagic) {
			return p.pdf.Parse(ctx, src, size)
		}
	}

	return p.text.Parse(ctx, src, size)
}

var _ port.Parser = (*AutoParser)(nil)
