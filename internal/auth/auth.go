// Package auth registers users and turns valid credentials into sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/store"
)

var (
	ErrMissingFields    = errors.New("please fill in all fields")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrUserExists       = errors.New("username already exists")
	ErrUnknownUser      = errors.New("username not found")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrPasswordTooLong  = errors.New("password longer than 72 bytes")
)

type Service struct {
	creds    store.Credentials
	sessions session.Store
	cost     int
}

func NewService(creds store.Credentials, sessions session.Store) *Service {
	return &Service{creds: creds, sessions: sessions, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost; tests lower it to bcrypt.MinCost.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func (s *Service) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.creds.Create(ctx, username, string(hash)); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("save credentials: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "username", username)
	return nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := s.creds.PasswordHash(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, ErrUnknownUser
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrWrongPassword
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	sess, err := s.sessions.Create(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.InfoContext(ctx, "user logged in", "username", username)
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a token to its live session. Unknown and expired
// tokens yield session.ErrNotFound.
func (s *Service) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrNotFound
	}
	return s.sessions.Get(ctx, token)
}
