// Package chat answers questions about the current paper and keeps each
// user's transcript.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/msherr/research-assistant/internal/llm"
	"github.com/msherr/research-assistant/internal/logger"
	"github.com/msherr/research-assistant/internal/prompt"
	"github.com/msherr/research-assistant/internal/store"
)

var (
	ErrEmptyQuery = errors.New("message is empty")
	ErrNoModel    = errors.New("chat requires an LLM provider")

	// ErrGenerate wraps failures of the model call.
	ErrGenerate = errors.New("generate answer")
)

type Service struct {
	client       llm.Client
	history      store.ChatHistory
	contextWords int
	now          func() time.Time

	// serialises load-append-save of transcripts
	mu sync.Mutex
}

// NewService returns a chat service. A nil client disables Ask but keeps the
// transcript endpoints working.
func NewService(client llm.Client, history store.ChatHistory, contextWords int) *Service {
	return &Service{
		client:       client,
		history:      history,
		contextWords: contextWords,
		now:          time.Now,
	}
}

// Ask sends query to the model with paperText as context, records both turns
// in the user's transcript and returns the answer. Nothing is recorded when
// the model call fails.
func (s *Service) Ask(ctx context.Context, username, paperText, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if s.client == nil {
		return "", ErrNoModel
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "assistant.chat"})
	asked := s.now()

	resp, err := s.client.Complete(ctx, llm.Request{Messages: []llm.Message{
		{Role: "system", Content: prompt.ChatSystem},
		{Role: "user", Content: prompt.Chat(query, paperText, s.contextWords)},
	}})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerate, err)
	}
	answer := strings.TrimSpace(resp.Content)

	slog.DebugContext(ctx, "chat answered",
		"query", logger.Truncate(query, 80),
		"model", s.client.Model(),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.history.Load(ctx, username)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	msgs = append(msgs,
		store.ChatMessage{Role: "user", Content: query, CreatedAt: asked},
		store.ChatMessage{Role: "assistant", Content: answer, CreatedAt: s.now()},
	)
	if err := s.history.Save(ctx, username, msgs); err != nil {
		return "", fmt.Errorf("save history: %w", err)
	}
	return answer, nil
}

func (s *Service) History(ctx context.Context, username string) ([]store.ChatMessage, error) {
	return s.history.Load(ctx, username)
}

func (s *Service) Clear(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Save(ctx, username, nil)
}
