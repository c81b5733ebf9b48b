// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/msherr/research-assistant/internal/llm"
)

// Fake records every request and answers with Reply, or Err when set.
type Fake struct {
	Reply func(req llm.Request) string
	Err   error

	mu       sync.Mutex
	requests []llm.Request
}

func (f *Fake) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	reply := "ok"
	if f.Reply != nil {
		reply = f.Reply(req)
	}
	return &llm.Response{Content: reply, FinishReason: "stop"}, nil
}

func (f *Fake) Model() string { return "fake" }

func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

// LastUserMessage returns the content of the final user message of req.
func LastUserMessage(req llm.Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			return req.Messages[i].Content
		}
	}
	return ""
}
