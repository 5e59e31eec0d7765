package memory

import (
	"context"
	"sync"

	"staybook/internal/domain/auth"
)

// SessionStore keeps sessions in process, mirroring the Mongo store used in
// production runs.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[auth.Token]auth.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[auth.Token]auth.Session)}
}

func (s *SessionStore) Get(ctx context.Context, token auth.Token) (*auth.Session, error) {
	if token == "" {
		return nil, auth.ErrTokenRequired
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	copied := session
	return &copied, nil
}

func (s *SessionStore) Put(ctx context.Context, session *auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token auth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
