// Package session holds per-login application state: who is logged in and
// which paper they are working on.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/msherr/research-assistant/internal/takeaway"
)

var ErrNotFound = errors.New("session not found or expired")

type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Paper     *Paper    `json:"paper,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Paper is the processed document a session chats about.
type Paper struct {
	Filename   string              `json:"filename"`
	Title      string              `json:"title"`
	Authors    string              `json:"authors"`
	Summary    string              `json:"summary"`
	Takeaways  []takeaway.Takeaway `json:"takeaways"`
	Text       string              `json:"text"`
	Pages      int                 `json:"pages"`
	UploadedAt time.Time           `json:"uploaded_at"`
}

type Store interface {
	Create(ctx context.Context, username string) (*Session, error)
	// Get returns ErrNotFound for unknown and expired tokens.
	Get(ctx context.Context, token string) (*Session, error)
	// Update stores s without extending its lifetime.
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}

func newSession(username string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:     uuid.NewString(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

type Config struct {
	Driver   string // memory|redis
	TTL      time.Duration
	RedisURL string
}

// Open builds the configured store. Close releases the redis connection, if any.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryStore(cfg.TTL), func() error { return nil }, nil
	case "redis":
		s, err := NewRedisStoreFromURL(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}
