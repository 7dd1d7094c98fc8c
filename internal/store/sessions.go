// Package store holds the process-wide mutable state: OAuth sessions and the
// per-user insight cache. Both stores are explicit objects injected into
// handlers, guarded by their own locks, and bounded by TTL sweeps.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DefaultSessionTTL bounds how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Session binds an ephemeral random token to the provider's durable user
// identity and the OAuth credential pair.
type Session struct {
	ID        string
	UserID    string
	Token     *oauth2.Token
	CreatedAt time.Time
}

// SessionStore is an in-memory, TTL-bounded session map keyed by token.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session for the given durable user identity and
// returns the caller's own copy of it. The token is a random UUID, never
// derived from user data.
func (s *SessionStore) Create(userID string, token *oauth2.Token) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	stored := *session
	s.sessions[session.ID] = &stored
	s.mu.Unlock()
	return session
}

// Get returns the session for a token, or false if unknown or expired.
// Expired sessions are removed on access. The result is a snapshot taken
// under the store lock: callers can read it freely while a concurrent
// UpdateToken rewrites the stored session.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	var snapshot Session
	if ok {
		snapshot = *session
	}
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.expired(&snapshot) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, false
	}
	return &snapshot, true
}

// UpdateToken stores a refreshed OAuth token back on the session. This is the
// one self-healing path: expired access tokens are refreshed transparently
// and the new credential pair persists for later requests.
func (s *SessionStore) UpdateToken(id string, token *oauth2.Token) {
	if token == nil {
		return
	}
	s.mu.Lock()
	if session, ok := s.sessions[id]; ok {
		session.Token = token
	}
	s.mu.Unlock()
}

// Sweep removes expired sessions and reports how many were evicted.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the current session count.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(session *Session) bool {
	return s.now().Sub(session.CreatedAt) > s.ttl
}
