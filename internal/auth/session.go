package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionManager maps opaque tokens to user ids. Sessions live in process
// memory: a restart logs everyone out, which is acceptable for this app.
type SessionManager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]session
	now      func() time.Time
}

type session struct {
	userID    int64
	expiresAt time.Time
}

// NewSessionManager creates a manager whose sessions expire after ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]session),
		now:      time.Now,
	}
}

// Create issues a fresh token bound to the given user id.
func (m *SessionManager) Create(userID int64) string {
	token := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = session{userID: userID, expiresAt: m.now().Add(m.ttl)}
	return token
}

// Resolve returns the user id bound to token. Expired or unknown tokens
// resolve as absent; expired entries are dropped on the way out.
func (m *SessionManager) Resolve(token string) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return 0, false
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, token)
		return 0, false
	}
	return s.userID, true
}

// Destroy invalidates the token. Destroying an unknown token is a no-op.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
