package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

// IngestUseCase drives a document through the pipeline:
// validating → parsing → embedding → persisting → indexing.
// Any stage can fail into a terminal failed state; persistence is a single
// transaction, so a failed ingest never leaves a completed book without
// its chunks or embeddings.
type IngestUseCase struct {
	parser   port.Parser
	chunker  port.Chunker
	embedder port.Embedder
	store    port.DocumentStore
	index    port.VectorIndex
	logger   *slog.Logger
}

func NewIngestUseCase(
	parser port.Parser,
	chunker port.Chunker,
	embedder port.Embedder,
	store port.DocumentStore,
	index port.VectorIndex,
	logger *slog.Logger,
) *IngestUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		parser:   parser,
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		index:    index,
		logger:   logger,
	}
}

// IngestInput is the raw document plus its caller-supplied metadata.
type IngestInput struct {
	Reader  io.ReaderAt
	Size    int64
	Title   string
	Subject string
}

// ProcessTextbook ingests one document end to end.
func (u *IngestUseCase) ProcessTextbook(ctx context.Context, input IngestInput, onProgress domain.ProgressFunc) (*domain.IngestResult, error) {
	started := time.Now()

	// validating
	if err := u.validate(input); err != nil {
		return nil, &domain.StageError{Stage: domain.StageValidating, Err: err}
	}

	// parsing
	emit(onProgress, domain.StageParsing, 0, 1, "parsing document")
	doc, err := u.parser.Parse(ctx, input.Reader, input.Size)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageParsing, Err: err}
	}
	emit(onProgress, domain.StageParsing, 1, 1, fmt.Sprintf("parsed %d pages", doc.PageCount()))

	now := time.Now()
	book := domain.Book{
		ID:        uuid.NewString(),
		Title:     input.Title,
		Subject:   input.Subject,
		PageCount: doc.PageCount(),
		SizeBytes: input.Size,
		Status:    domain.BookProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.store.PutBook(book); err != nil {
		return nil, &domain.StageError{Stage: domain.StageParsing, Err: err}
	}

	candidates, err := u.chunker.Chunk(doc)
	if err != nil {
		return nil, u.fail(book.ID, domain.StageParsing, err)
	}
	if len(candidates) == 0 {
		return nil, u.fail(book.ID, domain.StageParsing, &domain.ParseError{Reason: "document produced no chunks"})
	}

	scheme := u.embedder.ModelName()
	chunks := make([]domain.Chunk, len(candidates))
	texts := make([]string, len(candidates))
	for i, candidate := range candidates {
		candidate.ID = chunkID(book.ID, candidate.PageStart, candidate.PageEnd, i)
		candidate.BookID = book.ID
		candidate.Subject = book.Subject
		candidate.Scheme = scheme
		candidate.CreatedAt = now
		chunks[i] = candidate
		texts[i] = candidate.Text
	}

	// embedding
	embedProgress := func(done, total int) {
		emit(onProgress, domain.StageEmbedding, done, total, fmt.Sprintf("embedded %d/%d chunks", done, total))
	}
	embedded, err := u.embedder.EmbedMany(ctx, texts, embedProgress)
	if err != nil {
		return nil, u.fail(book.ID, domain.StageEmbedding, err)
	}
	if len(embedded.Vectors) != len(chunks) {
		return nil, u.fail(book.ID, domain.StageEmbedding, &domain.EmbeddingError{
			Reason: fmt.Sprintf("got %d vectors for %d chunks", len(embedded.Vectors), len(chunks)),
		})
	}

	dimension := u.embedder.Dimension()
	embeddings := make([]domain.Embedding, len(chunks))
	for i, chunk := range chunks {
		embeddings[i] = domain.Embedding{
			ID:        chunk.ID,
			BookID:    book.ID,
			Subject:   book.Subject,
			Dimension: dimension,
			Values:    embedded.Vectors[i],
			Scheme:    scheme,
			CreatedAt: now,
		}
	}

	// persisting
	emit(onProgress, domain.StagePersisting, 0, 1, "writing to store")
	book.Status = domain.BookCompleted
	book.UpdatedAt = time.Now()
	if err := u.store.BatchIngest(book, chunks, embeddings); err != nil {
		return nil, u.fail(book.ID, domain.StagePersisting, err)
	}
	emit(onProgress, domain.StagePersisting, 1, 1, "store write complete")

	// indexing: failures here are recoverable by the rebuild at next
	// startup, so log and continue instead of failing the ingest.
	emit(onProgress, domain.StageIndexing, 0, 1, "updating vector index")
	entries := buildIndexEntries(book, chunks, embeddings)
	if err := u.index.Upsert(entries); err != nil {
		u.logger.Warn("vector index update failed; will recover on next reload",
			"book_id", book.ID, "error", err)
	}
	emit(onProgress, domain.StageIndexing, 1, 1, "index updated")

	return &domain.IngestResult{
		Book:            book,
		TotalChunks:     len(chunks),
		TotalEmbeddings: len(embeddings),
		ProcessingTime:  time.Since(started),
	}, nil
}

func (u *IngestUseCase) validate(input IngestInput) error {
	if input.Reader == nil || input.Size == 0 {
		return &domain.ValidationError{Reason: "document is empty"}
	}
	if strings.TrimSpace(input.Title) == "" {
		return &domain.ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(input.Subject) == "" {
		return &domain.ValidationError{Reason: "subject is required"}
	}
	return nil
}

// fail marks the book failed and wraps the error with its stage. The
// status update is best-effort; the original error always wins.
func (u *IngestUseCase) fail(bookID string, stage domain.Stage, err error) error {
	if statusErr := u.store.UpdateBookStatus(bookID, domain.BookFailed); statusErr != nil {
		u.logger.Warn("failed to mark book as failed", "book_id", bookID, "error", statusErr)
	}
	return &domain.StageError{Stage: stage, Err: err}
}

func emit(onProgress domain.ProgressFunc, stage domain.Stage, current, total int, message string) {
	if onProgress != nil {
		onProgress(domain.ProgressEvent{Stage: stage, Current: current, Total: total, Message: message})
	}
}

func buildIndexEntries(book domain.Book, chunks []domain.Chunk, embeddings []domain.Embedding) []domain.IndexEntry {
	entries := make([]domain.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = domain.IndexEntry{
			ID:        chunk.ID,
			BookID:    book.ID,
			BookTitle: book.Title,
			Subject:   chunk.Subject,
			PageStart: chunk.PageStart,
			PageEnd:   chunk.PageEnd,
			Section:   chunk.Section,
			Position:  i,
			Vector:    embeddings[i].Values,
		}
	}
	return entries
}

func chunkID(bookID string, pageStart, pageEnd, position int) string {
	data := fmt.Sprintf("%s:%d-%d:%d", bookID, pageStart, pageEnd, position)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
