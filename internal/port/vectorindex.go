package port

import "studyrag/internal/domain"

// VectorIndex supports filtered top-K cosine search over index entries.
// It is rebuilt from the DocumentStore at startup; Upsert is idempotent
// by entry id so a rebuild never double-counts.
type VectorIndex interface {
	// Upsert adds entries, replacing any with the same id.
	Upsert(entries []domain.IndexEntry) error

	// Search returns up to topK entries ranked by cosine similarity,
	// descending. A non-empty subject restricts candidates before ranking.
	Search(query []float32, subject string, topK int) ([]domain.SearchResult, error)

	// DeleteByBook removes all entries for a book, returning how many.
	DeleteByBook(bookID string) int

	Stats() domain.IndexStats
}
