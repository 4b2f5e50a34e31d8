package port

import (
	"context"
	"io"

	"studyrag/internal/domain"
)

// Parser extracts per-page text from a raw document.
type Parser interface {
	Parse(ctx context.Context, src io.ReaderAt, size int64) (domain.ParsedDocument, error)
}
