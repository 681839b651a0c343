// Package chat holds the in-memory conversation state: the append-only
// message log, the compose session, and the send pipeline that connects
// them to the Shapes endpoint.
package chat

import (
	"sync"

	"shapechat/internal/domain"
)

// Store is the append-only log of one conversation. Messages are ordered
// by append call order and are never reordered or pruned while the
// session lives. Nothing is persisted across sessions.
type Store struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func NewStore() *Store {
	return &Store{}
}

// Append adds a message to the end of the log.
func (s *Store) Append(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

// Patch applies fn to the stored message with the given id, if present.
// This is the one sanctioned in-place mutation: annotating an optimistic
// message whose send failed.
func (s *Store) Patch(id string, fn func(*domain.Message)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			fn(&s.msgs[i])
			return true
		}
	}
	return false
}

// Messages returns a snapshot of the log.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Last returns the most recent message, or false for an empty log.
func (s *Store) Last() (domain.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.msgs) == 0 {
		return domain.Message{}, false
	}
	return s.msgs[len(s.msgs)-1], true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// Clear empties the log, releasing any media handles held by messages.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.msgs {
		if s.msgs[i].LocalMedia != nil {
			s.msgs[i].LocalMedia.Release()
		}
	}
	s.msgs = nil
}
