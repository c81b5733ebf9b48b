// Package llm talks to hosted chat models behind one small interface.
package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	ollamaBaseURL = "http://localhost:11434/v1/"
)

// ErrDisabled is returned by NewClient for the "none" provider.
var ErrDisabled = errors.New("llm disabled")

type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string // optional custom endpoint
	Model       string
	MaxTokens   int
	Temperature float64
}

type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

type Request struct {
	Messages    []Message
	MaxTokens   int      // 0 uses the client default
	Temperature *float64 // nil uses the client default
}

type Response struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// NewClient picks a provider implementation. Gemini and Ollama are reached
// through their OpenAI-compatible endpoints.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required")
		}
		return newOpenAIClient(cfg, "gpt-4o-mini"), nil
	case ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("API key is required")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = geminiBaseURL
		}
		return newOpenAIClient(cfg, "gemini-1.5-flash"), nil
	case ProviderOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = ollamaBaseURL
		}
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama"
		}
		return newOpenAIClient(cfg, "llama3.1"), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg)
	case ProviderNone, "":
		return nil, ErrDisabled
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func (c Config) temperature(req Request) *float64 {
	if req.Temperature != nil {
		return req.Temperature
	}
	if c.Temperature > 0 {
		t := c.Temperature
		return &t
	}
	return nil
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1024
}
