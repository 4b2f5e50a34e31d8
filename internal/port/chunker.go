package port

import "studyrag/internal/domain"

// Chunker splits a parsed document into page-bounded chunk candidates.
// Candidates carry page bounds, section label, text and token count;
// identity and ownership are assigned by the caller.
type Chunker interface {
	Chunk(doc domain.ParsedDocument) ([]domain.Chunk, error)
}
