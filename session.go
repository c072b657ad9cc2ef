package deepseek

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a conversation session.
type Session struct {
	ID        string
	Model     Model
	Messages  []Message
	Usage     Usage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession returns an empty session with a fresh random ID.
func NewSession(model Model) Session {
	now := time.Now()
	return Session{
		ID:        uuid.NewString(),
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds messages and bumps UpdatedAt.
func (s *Session) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	s.UpdatedAt = time.Now()
}
