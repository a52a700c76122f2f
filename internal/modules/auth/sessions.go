package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionInfo tracks one logged-in user.
type sessionInfo struct {
	UserID    string // email, also the game score identity
	Name      string
	CreatedAt time.Time
}

// SessionStore holds active login sessions keyed by bearer token.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionInfo
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]sessionInfo)}
}

// New creates a session for a user and returns its token.
func (s *SessionStore) New(user *User) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sessionInfo{
		UserID:    user.Email,
		Name:      user.Name,
		CreatedAt: time.Now(),
	}

	return token
}

// Lookup resolves a token to the owning user's identifier.
func (s *SessionStore) Lookup(token string) (userID string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.sessions[token]
	return info.UserID, ok
}

// Delete removes a session. Returns the user's identifier so callers can
// discard dependent per-session state.
func (s *SessionStore) Delete(token string) (userID string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	return info.UserID, ok
}
