package usecase

import (
	"fmt"
	"log/slog"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// LibraryUseCase manages the ingested corpus: listing, deletion with index
// synchronization, stats, and the index rebuild run at startup.
type LibraryUseCase struct {
	store  port.DocumentStore
	index  port.VectorIndex
	logger *slog.Logger
}

func NewLibraryUseCase(store port.DocumentStore, index port.VectorIndex, logger *slog.Logger) *LibraryUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryUseCase{
		store:  store,
		index:  index,
		logger: logger,
	}
}

func (u *LibraryUseCase) ListBooks(subject string) ([]domain.Book, error) {
	if subject != "" {
		return u.store.ListBooksBySubject(subject)
	}
	return u.store.ListBooks()
}

// DeleteBook removes a book from the store and the index. Store first:
// the index is derived state and can always be rebuilt.
func (u *LibraryUseCase) DeleteBook(id string) error {
	if _, err := u.store.GetBook(id); err != nil {
		return &domain.ValidationError{Reason: "unknown book: " + id}
	}
	if err := u.store.DeleteBook(id); err != nil {
		return err
	}
	u.index.DeleteByBook(id)
	return nil
}

// ReloadIndex rebuilds the vector index from the store. Upsert is
// idempotent by id, so reloading over a populated index never
// double-counts, and an ingest that lands mid-reload is preserved.
func (u *LibraryUseCase) ReloadIndex() (int, error) {
	books, err := u.store.ListBooks()
	if err != nil {
		return 0, fmt.Errorf("failed to list books: %w", err)
	}

	loaded := 0
	for _, book := range books {
		if book.Status != domain.BookCompleted {
			continue
		}

		chunks, err := u.store.GetChunksByBook(book.ID)
		if err != nil {
			u.logger.Warn("skipping book during index reload", "book_id", book.ID, "error", err)
			continue
		}
		embeddings, err := u.store.GetEmbeddingsByBook(book.ID)
		if err != nil || len(embeddings) != len(chunks) {
			u.logger.Warn("book has inconsistent chunk/embedding data, skipping",
				"book_id", book.ID, "chunks", len(chunks), "embeddings", len(embeddings))
			continue
		}

		if err := u.index.Upsert(buildIndexEntries(book, chunks, embeddings)); err != nil {
			return loaded, fmt.Errorf("failed to load book %s into index: %w", book.ID, err)
		}
		loaded += len(chunks)
	}

	return loaded, nil
}

// Stats combines store and index statistics.
type LibraryStats struct {
	Store domain.StoreStats
	Index domain.IndexStats
}

func (u *LibraryUseCase) Stats() (LibraryStats, error) {
	storeStats, err := u.store.Stats()
	if err != nil {
		return LibraryStats{}, err
	}
	return LibraryStats{
		Store: storeStats,
		Index: u.index.Stats(),
	}, nil
}
