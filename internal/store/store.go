// Package store persists user credentials and chat transcripts.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already exists")
)

type ChatMessage struct {
	Role      string    `yaml:"role" json:"role"` // "user" or "assistant"
	Content   string    `yaml:"content" json:"content"`
	CreatedAt time.Time `yaml:"created_at,omitempty" json:"created_at,omitempty"`
}

type Credentials interface {
	// PasswordHash returns ErrUserNotFound for unknown users.
	PasswordHash(ctx context.Context, username string) (string, error)
	// Create returns ErrUserExists when the username is taken.
	Create(ctx context.Context, username, passwordHash string) error
}

type ChatHistory interface {
	// Load returns an empty slice for users without history.
	Load(ctx context.Context, username string) ([]ChatMessage, error)
	// Save replaces the user's transcript; an empty slice removes it.
	Save(ctx context.Context, username string, messages []ChatMessage) error
}

type Stores struct {
	Credentials Credentials
	Chats       ChatHistory
	closeFn     func() error
}

func (s *Stores) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

type Config struct {
	Driver          string // yaml|bolt
	CredentialsFile string
	ChatHistoryFile string
	BoltPath        string
}

func Open(cfg Config) (*Stores, error) {
	switch cfg.Driver {
	case "yaml", "":
		return &Stores{
			Credentials: NewYAMLCredentials(cfg.CredentialsFile),
			Chats:       NewYAMLChatHistory(cfg.ChatHistoryFile),
		}, nil
	case "bolt":
		b, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return &Stores{Credentials: b, Chats: b, closeFn: b.Close}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
