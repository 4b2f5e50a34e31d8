package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"studyrag/internal/domain"
	"studyrag/internal/port"
)

const (
	// DefaultTopK is the number of chunks retrieved when the caller does
	// not say otherwise.
	DefaultTopK = 5

	// maxSourceChars bounds the citation text shown to the caller; the
	// full text stays in the store.
	maxSourceChars = 300

	noInfoAnswer = "No relevant information was found in your study materials for this question."
)

// QueryUseCase answers a question against the indexed corpus: embed the
// question, search the index, synthesize a grounded answer. An empty
// retrieval is not an error; it short-circuits before the LLM is called.
type QueryUseCase struct {
	embedder    port.Embedder
	index       port.VectorIndex
	store       port.DocumentStore
	synthesizer port.Synthesizer
}

func NewQueryUseCase(
	embedder port.Embedder,
	index port.VectorIndex,
	store port.DocumentStore,
	synthesizer port.Synthesizer,
) *QueryUseCase {
	return &QueryUseCase{
		embedder:    embedder,
		index:       index,
		store:       store,
		synthesizer: synthesizer,
	}
}

// Ask runs the query pipeline. Subject optionally restricts retrieval;
// topK <= 0 selects the default.
func (u *QueryUseCase) Ask(ctx context.Context, question, subject string, topK int) (*domain.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &domain.ValidationError{Reason: "question is empty"}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := u.embedder.EmbedOne(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := u.index.Search(vector, subject, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	if len(results) == 0 {
		return &domain.QueryResult{
			Answer:  noInfoAnswer,
			Sources: []domain.Source{},
		}, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(results))
	for _, result := range results {
		chunk, err := u.store.GetChunk(result.Entry.ID)
		if err != nil {
			// Index ahead of the store; the entry self-heals on reload.
			continue
		}
		scored = append(scored, domain.ScoredChunk{
			Chunk:     chunk,
			BookTitle: result.Entry.BookTitle,
			Score:     result.Score,
		})
	}
	if len(scored) == 0 {
		return &domain.QueryResult{
			Answer:  noInfoAnswer,
			Sources: []domain.Source{},
		}, nil
	}

	answer, err := u.synthesizer.Synthesize(ctx, question, scored)
	if err != nil {
		return nil, err
	}

	sources := make([]domain.Source, len(scored))
	for i, s := range scored {
		sources[i] = domain.Source{
			Text:      truncate(s.Chunk.Text, maxSourceChars),
			BookTitle: s.BookTitle,
			PageStart: s.Chunk.PageStart,
			PageEnd:   s.Chunk.PageEnd,
			Score:     s.Score,
		}
	}

	return &domain.QueryResult{
		Answer:  answer.Text,
		Sources: sources,
		Model:   answer.Model,
		Usage:   answer.Usage,
	}, nil
}

// AskInSession runs Ask and appends the turn to a chat session, creating
// the session when sessionID is empty. Returns the session id used.
func (u *QueryUseCase) AskInSession(ctx context.Context, sessionID, question, subject string, topK int) (*domain.QueryResult, string, error) {
	if sessionID == "" {
		session := domain.ChatSession{
			ID:        uuid.NewString(),
			Subject:   subject,
			CreatedAt: time.Now(),
		}
		if err := u.store.PutSession(session); err != nil {
			return nil, "", err
		}
		sessionID = session.ID
	} else if _, err := u.store.GetSession(sessionID); err != nil {
		return nil, "", &domain.ValidationError{Reason: "unknown session: " + sessionID}
	}

	result, err := u.Ask(ctx, question, subject, topK)
	if err != nil {
		return nil, sessionID, err
	}

	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Question:  question,
		Answer:    result.Answer,
		Sources:   result.Sources,
		CreatedAt: time.Now(),
	}
	if err := u.store.AppendMessage(msg); err != nil {
		return nil, sessionID, err
	}

	return result, sessionID, nil
}

// truncate shortens text to at most limit bytes, never splitting a rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit] + "..."
}
