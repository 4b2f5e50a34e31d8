package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// MemoryIndex is an in-memory brute-force cosine similarity index. It is
// rebuilt from the document store at startup and kept in sync by the
// orchestrator afterwards; it has no persistence of its own.
//
// A linear scan is deliberate at this corpus scale. The port.VectorIndex
// interface is the sole access path, so an ANN structure can replace this
// implementation without touching callers.
type MemoryIndex struct {
	dimension int

	mu      sync.RWMutex
	entries []domain.IndexEntry
	byID    map[string]int
}

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		byID:      make(map[string]int),
	}
}

// Upsert adds entries, replacing any existing entry with the same id, so
// rebuilding from the store is idempotent.
func (x *MemoryIndex) Upsert(entries []domain.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, entry := range entries {
		if len(entry.Vector) != x.dimension {
			return fmt.Errorf("vector dimension mismatch for %s: expected %d, got %d", entry.ID, x.dimension, len(entry.Vector))
		}
		if pos, ok := x.byID[entry.ID]; ok {
			x.entries[pos] = entry
			continue
		}
		x.byID[entry.ID] = len(x.entries)
		x.entries = append(x.entries, entry)
	}
	return nil
}

// Search ranks candidates by cosine similarity, descending. The subject
// filter restricts candidates before ranking; ties keep insertion order.
func (x *MemoryIndex) Search(query []float32, subject string, topK int) ([]domain.SearchResult, error) {
	if len(query) != x.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", x.dimension, len(query))
	}
	if topK <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	results := make([]domain.SearchResult, 0, len(x.entries))
	for _, entry := range x.entries {
		if subject != "" && entry.Subject != subject {
			continue
		}
		results = append(results, domain.SearchResult{
			Entry: entry,
			Score: cosineSimilarity(query, entry.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// DeleteByBook removes every entry belonging to a book.
func (x *MemoryIndex) DeleteByBook(bookID string) int {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.entries[:0]
	removed := 0
	for _, entry := range x.entries {
		if entry.BookID == bookID {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	x.entries = kept

	if removed > 0 {
		x.byID = make(map[string]int, len(x.entries))
		for i, entry := range x.entries {
			x.byID[entry.ID] = i
		}
	}
	return removed
}

func (x *MemoryIndex) Stats() domain.IndexStats {
	x.mu.RLock()
	defer x.mu.RUnlock()

	subjects := make(map[string]struct{})
	books := make(map[string]struct{})
	for _, entry := range x.entries {
		subjects[entry.Subject] = struct{}{}
		books[entry.BookID] = struct{}{}
	}

	return domain.IndexStats{
		Count:            len(x.entries),
		DistinctSubjects: len(subjects),
		DistinctBooks:    len(books),
	}
}

// cosineSimilarity is dot product over the product of magnitudes, defined
// as 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ port.VectorIndex = (*MemoryIndex)(nil)
