package services

import (
	"sync"

	"github.com/veldtlabs/querra/internal/core/domain"
	"github.com/veldtlabs/querra/internal/logger"
)

// boundSession ties a session id to its retriever and collection key.
// The retriever is bound at creation and reused for every message, so
// the collection key is never re-derived mid-session.
type boundSession struct {
	retriever *Retriever
	key       string
}

// SessionRegistry is the process-wide mapping from session id to an
// initialised retriever. It is an explicit, injected object rather than
// ambient state, and it is mutex-guarded because it is shared mutable
// state even though the transport loop is serial today.
//
// Sessions have no expiry or capacity bound: the registry grows for the
// process lifetime and is lost on restart. That is a scope boundary of
// the system, not an oversight.
type SessionRegistry struct {
	mu          sync.RWMutex
	sessions    map[string]boundSession
	allowReinit bool
}

// NewSessionRegistry creates an empty registry. When allowReinit is
// true, re-initialising a live session id replaces its binding; the
// default behaviour rejects the duplicate with ErrSessionExists.
func NewSessionRegistry(allowReinit bool) *SessionRegistry {
	return &SessionRegistry{
		sessions:    make(map[string]boundSession),
		allowReinit: allowReinit,
	}
}

// Bind registers a session. Session ids are supplied by the client; the
// registry never generates them.
func (s *SessionRegistry) Bind(sessionID string, retriever *Retriever) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; exists && !s.allowReinit {
		return domain.ErrSessionExists
	}

	s.sessions[sessionID] = boundSession{
		retriever: retriever,
		key:       retriever.CollectionKey(),
	}
	logger.Info("session %s bound to collection %s", sessionID, retriever.CollectionKey())
	return nil
}

// Retriever returns the retriever bound to a session id, or
// ErrInvalidSession if the id was never initialised in this process.
func (s *SessionRegistry) Retriever(sessionID string) (*Retriever, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bound, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrInvalidSession
	}
	return bound.retriever, nil
}

// Exists reports whether a session id is live.
func (s *SessionRegistry) Exists(sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[sessionID]
	return ok
}

// Len returns the number of live sessions.
func (s *SessionRegistry) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
