package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"studyrag/internal/domain"
)

type sessionMeta struct {
	Subject   string `json:"subject,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type messageMeta struct {
	SessionID string          `json:"session_id"`
	Question  string          `json:"question"`
	Answer    string          `json:"answer"`
	Sources   []domain.Source `json:"sources,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

func (s *BoltStore) PutSession(session domain.ChatSession) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(sessionMeta{
			Subject:   session.Subject,
			CreatedAt: session.CreatedAt.Unix(),
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSessions).Put([]byte(session.ID), data)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "put session", Err: err}
	}
	return nil
}

func (s *BoltStore) GetSession(id string) (domain.ChatSession, error) {
	var session domain.ChatSession
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("session not found: %s", id)
		}
		var meta sessionMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		session = domain.ChatSession{
			ID:        id,
			Subject:   meta.Subject,
			CreatedAt: time.Unix(meta.CreatedAt, 0),
		}
		return nil
	})
	return session, err
}

// AppendMessage records a turn in a session. Messages are append-only; the
// per-session index keeps them in insertion order.
func (s *BoltStore) AppendMessage(msg domain.ChatMessage) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketSessions).Get([]byte(msg.SessionID)) == nil {
			return fmt.Errorf("session not found: %s", msg.SessionID)
		}

		data, err := json.Marshal(messageMeta{
			SessionID: msg.SessionID,
			Question:  msg.Question,
			Answer:    msg.Answer,
			Sources:   msg.Sources,
			CreatedAt: msg.CreatedAt.Unix(),
		})
		if err != nil {
			return err
		}

		msgs := tx.Bucket(bucketSessionMsgs)
		var ids []string
		if existing := msgs.Get([]byte(msg.SessionID)); existing != nil {
			if err := json.Unmarshal(existing, &ids); err != nil {
				return err
			}
		}
		ids = append(ids, msg.ID)
		idsData, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if err := msgs.Put([]byte(msg.SessionID), idsData); err != nil {
			return err
		}

		return tx.Bucket(bucketMessages).Put([]byte(msg.ID), data)
	})
	if err != nil {
		return &domain.PersistenceError{Op: "append message", Err: err}
	}
	return nil
}

func (s *BoltStore) GetMessages(sessionID string) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessionMsgs).Get([]byte(sessionID))
		if data == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		msgBucket := tx.Bucket(bucketMessages)
		for _, id := range ids {
			raw := msgBucket.Get([]byte(id))
			if raw == nil {
				continue
			}
			var meta messageMeta
			if err := json.Unmarshal(raw, &meta); err != nil {
				continue
			}
			messages = append(messages, domain.ChatMessage{
				ID:        id,
				SessionID: meta.SessionID,
				Question:  meta.Question,
				Answer:    meta.Answer,
				Sources:   meta.Sources,
				CreatedAt: time.Unix(meta.CreatedAt, 0),
			})
		}
		return nil
	})
	return messages, err
}
