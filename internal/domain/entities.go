package domain

import "time"

// BookStatus tracks a book through the ingest pipeline.
type BookStatus string

const (
	BookPending    BookStatus = "pending"
	BookProcessing BookStatus = "processing"
	BookCompleted  BookStatus = "completed"
	BookFailed     BookStatus = "failed"
)

// Book is one ingested source document.
type Book struct {
	ID        string
	Title     string
	Subject   string
	PageCount int
	SizeBytes int64
	Status    BookStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk is a contiguous text segment of a book bounded by whole pages.
type Chunk struct {
	ID         string
	BookID     string
	Subject    string
	PageStart  int
	PageEnd    int
	Section    string
	Text       string
	TokenCount int
	Scheme     string
	CreatedAt  time.Time
}

// Embedding is the vector for exactly one chunk; its ID equals the chunk ID.
type Embedding struct {
	ID        string
	BookID    string
	Subject   string
	Dimension int
	Values    []float32
	Scheme    string
	CreatedAt time.Time
}

// IndexEntry is the in-memory, queryable projection of a chunk and its
// embedding, carrying the metadata needed to display a result without a
// store round-trip.
type IndexEntry struct {
	ID        string
	BookID    string
	BookTitle string
	Subject   string
	PageStart int
	PageEnd   int
	Section   string
	Position  int
	Vector    []float32
}

// SearchResult is an index entry ranked by cosine similarity.
type SearchResult struct {
	Entry IndexEntry
	Score float64
}

// ScoredChunk pairs a retrieved chunk with its provenance for synthesis.
type ScoredChunk struct {
	Chunk     Chunk
	BookTitle string
	Score     float64
}

// IndexStats summarizes the in-memory index contents.
type IndexStats struct {
	Count            int
	DistinctSubjects int
	DistinctBooks    int
}

// StoreStats summarizes the persisted corpus.
type StoreStats struct {
	Books      int
	Chunks     int
	Embeddings int
	Sessions   int
}

// Page is one page of extracted text from a parsed document.
type Page struct {
	Number int
	Text   string
}

// ParsedDocument is the output of document parsing: ordered pages of text.
type ParsedDocument struct {
	Pages []Page
}

func (d ParsedDocument) PageCount() int { return len(d.Pages) }

// TokenUsage reports provider token accounting; zero when unavailable.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Answer is the synthesizer output.
type Answer struct {
	Text  string
	Model string
	Usage TokenUsage
}

// Source is a citation attached to a query result. Text is truncated for
// display; provenance fields are complete.
type Source struct {
	Text      string  `json:"text"`
	BookTitle string  `json:"book_title"`
	PageStart int     `json:"page_start"`
	PageEnd   int     `json:"page_end"`
	Score     float64 `json:"score"`
}

// QueryResult is the outcome of one question against the corpus.
type QueryResult struct {
	Answer  string     `json:"answer"`
	Sources []Source   `json:"sources"`
	Model   string     `json:"model"`
	Usage   TokenUsage `json:"usage"`
}

// IngestResult reports a completed ingest.
type IngestResult struct {
	Book            Book
	TotalChunks     int
	TotalEmbeddings int
	ProcessingTime  time.Duration
}

// Stage names an ingest pipeline stage.
type Stage string

const (
	StageValidating Stage = "validating"
	StageParsing    Stage = "parsing"
	StageEmbedding  Stage = "embedding"
	StagePersisting Stage = "persisting"
	StageIndexing   Stage = "indexing"
)

// ProgressEvent reports ingest progress for one stage.
type ProgressEvent struct {
	Stage   Stage
	Current int
	Total   int
	Message string
}

// ProgressFunc receives progress events during a long-running ingest.
type ProgressFunc func(ProgressEvent)

// ChatSession groups the conversational turns of one user interaction.
type ChatSession struct {
	ID        string
	Subject   string
	CreatedAt time.Time
}

// ChatMessage is one question/answer turn in a session. Append-only.
type ChatMessage struct {
	ID        string
	SessionID string
	Question  string
	Answer    string
	Sources   []Source
	CreatedAt time.Time
}
