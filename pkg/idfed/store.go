package idfed

import (
	"sync"
	"time"
)

// SessionStore hands out sessions keyed by username for callers juggling
// many concurrent flows. The store itself is safe for concurrent use; each
// stored Session is still a single-flow object owned by whoever fetched it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	updated  time.Time
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		updated:  time.Now(),
	}
}

// Put stores the session for a username, replacing any previous one.
func (s *SessionStore) Put(username string, session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[username] = session
	s.updated = time.Now()
}

// Get retrieves the session for a username.
func (s *SessionStore) Get(username string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[username]
	return session, ok
}

// Remove drops the session for a username.
func (s *SessionStore) Remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, username)
	s.updated = time.Now()
}

// Usernames returns the usernames with stored sessions.
func (s *SessionStore) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.sessions))
	for name := range s.sessions {
		names = append(names, name)
	}
	return names
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
