package apiclient

import (
	"sync"
	"time"
)

// Session holds the bearer token of a signed-in admin. It is acquired at
// login, attached to every admin call, and invalidated on logout or on the
// first 401 response.
type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func NewSession() *Session {
	return &Session{}
}

// SessionWithToken is used by tools that already hold a token.
func SessionWithToken(token string, expiresAt time.Time) *Session {
	return &Session{token: token, expiresAt: expiresAt}
}

func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *Session) Active() bool {
	_, ok := s.Token()
	return ok
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) set(token string, expiresAt time.Time) {
	s.mu.Lock()
	s.token = token
	s.expiresAt = expiresAt
	s.mu.Unlock()
}

func (s *Session) Invalidate() {
	s.set("", time.Time{})
}
