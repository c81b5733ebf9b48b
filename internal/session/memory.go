package session

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source; tests use it to expire sessions.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Create(_ context.Context, username string) (*Session, error) {
	s := newSession(username, m.now(), m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.sessions[s.Token] = *s
	return s, nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok || !m.now().Before(s.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.sessions[s.Token]
	if !ok || !m.now().Before(cur.ExpiresAt) {
		return ErrNotFound
	}
	updated := *s
	updated.ExpiresAt = cur.ExpiresAt
	m.sessions[s.Token] = updated
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// sweep drops expired sessions; callers hold mu.
func (m *MemoryStore) sweep() {
	now := m.now()
	for token, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}
