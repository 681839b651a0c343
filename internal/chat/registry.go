package chat

import (
	"sync"

	"github.com/google/uuid"

	"shapechat/internal/domain"
)

// Session bundles the live per-conversation state: the log, the compose
// session, and the pipeline serializing sends into it.
type Session struct {
	Shape    domain.Shape
	Store    *Store
	Compose  *Compose
	Pipeline *Pipeline
}

// Registry hands out one live session per (user, shape). Conversations
// exist only in memory: switching shapes switches logs without
// destroying them, and a reply that arrives after a switch still lands
// in the originating shape's log.
type Registry struct {
	transport Transport

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

type sessionKey struct {
	userID  int64
	shapeID uuid.UUID
}

func NewRegistry(transport Transport) *Registry {
	return &Registry{transport: transport, sessions: make(map[sessionKey]*Session)}
}

// Get returns the session for the user and shape, creating it on first
// use. The notifier is bound at creation and reused for the session's
// lifetime.
func (r *Registry) Get(userID int64, shape domain.Shape, notifier Notifier) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, shapeID: shape.ID}
	if s, ok := r.sessions[key]; ok {
		return s
	}

	store := NewStore()
	compose := NewCompose()
	s := &Session{
		Shape:    shape,
		Store:    store,
		Compose:  compose,
		Pipeline: NewPipeline(store, compose, r.transport, notifier),
	}
	r.sessions[key] = s
	return s
}

// Drop ends a conversation, releasing compose resources and clearing
// the log. A later Get starts fresh.
func (r *Registry) Drop(userID int64, shapeID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{userID: userID, shapeID: shapeID}
	if s, ok := r.sessions[key]; ok {
		s.Compose.Close()
		s.Store.Clear()
		delete(r.sessions, key)
	}
}
