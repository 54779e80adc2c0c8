// Package store keeps step-by-step sessions keyed by generated tokens.
// Each session is owned by the client holding its token; the store only
// serialises the map itself, not operations inside one session.
package store

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/modelseq/go-modelseq/pkg/sequence"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore is a concurrent map of live sessions.
type SessionStore struct {
	lock     sync.RWMutex
	sessions map[string]*sequence.Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sequence.Session),
	}
}

// Create registers a new session and returns its token.
func (s *SessionStore) Create(session *sequence.Session) string {
	token := "session-" + uuid.New().String()

	s.lock.Lock()
	defer s.lock.Unlock()
	s.sessions[token] = session

	return token
}

// Get returns the session for a token.
func (s *SessionStore) Get(token string) (*sequence.Session, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, errors.Wrap(ErrSessionNotFound, token)
	}

	return session, nil
}

// Delete removes the session for a token. Unknown tokens are a no-op.
func (s *SessionStore) Delete(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.sessions, token)
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.sessions)
}
