package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

var (
	bucketBooks       = []byte("books")
	bucketChunks      = []byte("chunks")
	bucketChunkText   = []byte("chunk_text")
	bucketBookChunks  = []byte("book_chunks")
	bucketEmbeddings  = []byte("embeddings")
	bucketSessions    = []byte("sessions")
	bucketSessionMsgs = []byte("session_msgs")
	bucketMessages    = []byte("messages")
	bucketMeta        = []byte("meta")
)

// BoltStore is the durable document store. Chunk metadata and text live in
// separate buckets; book_chunks maps a book id to its ordered chunk ids, and
// embedding ids equal chunk ids, so one index bucket serves both lookups.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketBooks, bucketChunks, bucketChunkText, bucketBookChunks, bucketEmbeddings, bucketSessions, bucketSessionMsgs, bucketMessages, bucketMeta}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type bookMeta struct {
	Title     string `json:"title"`
	Subject   string `json:"subject"`
	PageCount int    `json:"page_count"`
	SizeBytes int64  `json:"size_bytes"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type chunkMeta struct {
	BookID     string `json:"book_id"`
	Subject    string `json:"subject"`
	PageStart  int    `json:"page_start"`
	PageEnd    int    `json:"page_end"`
	Section    string `json:"section,omitempty"`
	TokenCount int    `json:"token_count"`
	Scheme     string `json:"scheme"`
	CreatedAt  int64  `json:"created_at"`
}

type embeddingMeta struct {
	BookID    string    `json:"book_id"`
	Subject   string    `json:"subject"`
	Dimension int       `json:"dimension"`
	Values    []float32 `json:"values"`
	Scheme    string    `json:"scheme"`
	CreatedAt int64     `json:"created_at"`
}

func bookToMeta(b domain.Book) bookMeta {
	return bookMeta{
		Title:     b.Title,
		Subject:   b.Subject,
		PageCount: b.PageCount,
		SizeBytes: b.SizeBytes,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Unix(),
		UpdatedAt: b.UpdatedAt.Unix(),
	}
}

func metaToBook(id string, m bookMeta) domain.Book {
	return domain.Book{
		ID:        id,
		Title:     m.Title,
		Subject:   m.Subject,
		PageCount: m.PageCount,
		SizeBytes: m.SizeBytes,
		Status:    domain.BookStatus(m.Status),
		CreatedAt: time.Unix(m.CreatedAt, 0),
		UpdatedAt: time.Unix(m.UpdatedAt, 0),
	}
}

func (s *BoltStore) PutBook(book domain.Book) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(bookToMeta(book))
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBooks).Put([]byte(book.ID), data)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "put book", Err: err}
	}
	return nil
}

func (s *BoltStore) GetBook(id string) (domain.Book, error) {
	var book domain.Book
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketBooks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("book not found: %s", id)
		}
		var meta bookMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		book = metaToBook(id, meta)
		return nil
	})
	return book, err
}

func (s *BoltStore) ListBooks() ([]domain.Book, error) {
	return s.listBooks("")
}

func (s *BoltStore) ListBooksBySubject(subject string) ([]domain.Book, error) {
	return s.listBooks(subject)
}

func (s *BoltStore) listBooks(subject string) ([]domain.Book, error) {
	var books []domain.Book
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBooks).ForEach(func(k, v []byte) error {
			var meta bookMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			if subject != "" && meta.Subject != subject {
				return nil
			}
			books = append(books, metaToBook(string(k), meta))
			return nil
		})
	})
	return books, err
}

func (s *BoltStore) UpdateBookStatus(id string, status domain.BookStatus) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBooks)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("book not found: %s", id)
		}
		var meta bookMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		meta.Status = string(status)
		meta.UpdatedAt = time.Now().Unix()
		updated, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "update book status", Err: err}
	}
	return nil
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("chunk not found: %s", id)
		}
		var meta chunkMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		text := tx.Bucket(bucketChunkText).Get([]byte(id))
		chunk = metaToChunk(id, meta, text)
		return nil
	})
	return chunk, err
}

func metaToChunk(id string, meta chunkMeta, text []byte) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		BookID:     meta.BookID,
		Subject:    meta.Subject,
		PageStart:  meta.PageStart,
		PageEnd:    meta.PageEnd,
		Section:    meta.Section,
		Text:       string(text),
		TokenCount: meta.TokenCount,
		Scheme:     meta.Scheme,
		CreatedAt:  time.Unix(meta.CreatedAt, 0),
	}
}

func (s *BoltStore) GetChunksByBook(bookID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		ids, err := chunkIDs(tx, bookID)
		if err != nil || ids == nil {
			return err
		}
		chunkBucket := tx.Bucket(bucketChunks)
		textBucket := tx.Bucket(bucketChunkText)
		for _, id := range ids {
			data := chunkBucket.Get([]byte(id))
			if data == nil {
				continue
			}
			var meta chunkMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			chunks = append(chunks, metaToChunk(id, meta, textBucket.Get([]byte(id))))
		}
		return nil
	})
	return chunks, err
}

func (s *BoltStore) GetEmbeddingsByBook(bookID string) ([]domain.Embedding, error) {
	var embeddings []domain.Embedding
	err := s.db.View(func(tx *bbolt.Tx) error {
		ids, err := chunkIDs(tx, bookID)
		if err != nil || ids == nil {
			return err
		}
		bucket := tx.Bucket(bucketEmbeddings)
		for _, id := range ids {
			data := bucket.Get([]byte(id))
			if data == nil {
				continue
			}
			var meta embeddingMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			embeddings = append(embeddings, domain.Embedding{
				ID:        id,
				BookID:    meta.BookID,
				Subject:   meta.Subject,
				Dimension: meta.Dimension,
				Values:    meta.Values,
				Scheme:    meta.Scheme,
				CreatedAt: time.Unix(meta.CreatedAt, 0),
			})
		}
		return nil
	})
	return embeddings, err
}

func chunkIDs(tx *bbolt.Tx, bookID string) ([]string, error) {
	data := tx.Bucket(bucketBookChunks).Get([]byte(bookID))
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// BatchIngest writes the book and all of its chunks and embeddings in a
// single transaction, so a book is never durably completed without its
// children.
func (s *BoltStore) BatchIngest(book domain.Book, chunks []domain.Chunk, embeddings []domain.Embedding) error {
	if len(chunks) != len(embeddings) {
		return &domain.PersistenceError{
			Op:  "batch ingest",
			Err: fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings)),
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bookData, err := json.Marshal(bookToMeta(book))
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketBooks).Put([]byte(book.ID), bookData); err != nil {
			return err
		}

		chunkBucket := tx.Bucket(bucketChunks)
		textBucket := tx.Bucket(bucketChunkText)
		embBucket := tx.Bucket(bucketEmbeddings)

		ids := make([]string, 0, len(chunks))
		for _, chunk := range chunks {
			meta := chunkMeta{
				BookID:     chunk.BookID,
				Subject:    chunk.Subject,
				PageStart:  chunk.PageStart,
				PageEnd:    chunk.PageEnd,
				Section:    chunk.Section,
				TokenCount: chunk.TokenCount,
				Scheme:     chunk.Scheme,
				CreatedAt:  chunk.CreatedAt.Unix(),
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := chunkBucket.Put([]byte(chunk.ID), data); err != nil {
				return err
			}
			if err := textBucket.Put([]byte(chunk.ID), []byte(chunk.Text)); err != nil {
				return err
			}
			ids = append(ids, chunk.ID)
		}

		for _, emb := range embeddings {
			meta := embeddingMeta{
				BookID:    emb.BookID,
				Subject:   emb.Subject,
				Dimension: emb.Dimension,
				Values:    emb.Values,
				Scheme:    emb.Scheme,
				CreatedAt: emb.CreatedAt.Unix(),
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := embBucket.Put([]byte(emb.ID), data); err != nil {
				return err
			}
		}

		idsData, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketBookChunks).Put([]byte(book.ID), idsData)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "batch ingest", Err: err}
	}
	return nil
}

// DeleteBook removes a book and cascades to its chunks and embeddings in
// one transaction.
func (s *BoltStore) DeleteBook(id string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		ids, err := chunkIDs(tx, id)
		if err != nil {
			return err
		}

		chunkBucket := tx.Bucket(bucketChunks)
		textBucket := tx.Bucket(bucketChunkText)
		embBucket := tx.Bucket(bucketEmbeddings)
		for _, chunkID := range ids {
			chunkBucket.Delete([]byte(chunkID))
			textBucket.Delete([]byte(chunkID))
			embBucket.Delete([]byte(chunkID))
		}

		if err := tx.Bucket(bucketBookChunks).Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketBooks).Delete([]byte(id))
	})
	if err != nil {
		return &domain.PersistenceError{Op: "delete book", Err: err}
	}
	return nil
}

func (s *BoltStore) Stats() (domain.StoreStats, error) {
	var stats domain.StoreStats
	err := s.db.View(func(tx *bbolt.Tx) error {
		stats.Books = tx.Bucket(bucketBooks).Stats().KeyN
		stats.Chunks = tx.Bucket(bucketChunks).Stats().KeyN
		stats.Embeddings = tx.Bucket(bucketEmbeddings).Stats().KeyN
		stats.Sessions = tx.Bucket(bucketSessions).Stats().KeyN
		return nil
	})
	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ port.DocumentStore = (*BoltStore)(nil)
