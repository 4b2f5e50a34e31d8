package port

import "studyrag/internal/domain"

// DocumentStore is the durable record store for books, chunks, embeddings
// and chat history, keyed by id with secondary lookup by book and subject.
type DocumentStore interface {
	PutBook(book domain.Book) error

	GetBook(id string) (domain.Book, error)

	ListBooks() ([]domain.Book, error)

	ListBooksBySubject(subject string) ([]domain.Book, error)

	UpdateBookStatus(id string, status domain.BookStatus) error

	GetChunk(id string) (domain.Chunk, error)

	GetChunksByBook(bookID string) ([]domain.Chunk, error)

	GetEmbeddingsByBook(bookID string) ([]domain.Embedding, error)

	// BatchIngest writes a book with all its chunks and embeddings in one
	// transaction. The book is durably completed only if every child is.
	BatchIngest(book domain.Book, chunks []domain.Chunk, embeddings []domain.Embedding) error

	// DeleteBook removes a book and cascades to its chunks and embeddings.
	DeleteBook(id string) error

	PutSession(session domain.ChatSession) error

	GetSession(id string) (domain.ChatSession, error)

	AppendMessage(msg domain.ChatMessage) error

	GetMessages(sessionID string) ([]domain.ChatMessage, error)

	Stats() (domain.StoreStats, error)

	Close() error
}
