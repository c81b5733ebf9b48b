package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/msherr/research-assistant/internal/llm"
	"github.com/msherr/research-assistant/internal/prompt"
	"github.com/msherr/research-assistant/internal/takeaway"
	"github.com/msherr/research-assistant/internal/textnorm"
)

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// -------- Extractive fallback --------

type fallbackSummarizer struct {
	ex        *takeaway.Extractor
	sentences int
}

// NewFallback summarizes without a model: the top ranked sentences, put back
// into document order.
func NewFallback(ex *takeaway.Extractor, sentences int) Summarizer {
	if sentences <= 0 {
		sentences = takeaway.DefaultCount
	}
	return &fallbackSummarizer{ex: ex, sentences: sentences}
}

func (f *fallbackSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	top := f.ex.ExtractScored(text, f.sentences)
	slices.SortFunc(top, func(a, b takeaway.Takeaway) int {
		return a.Position - b.Position
	})
	parts := make([]string, len(top))
	for i, t := range top {
		parts[i] = t.Text
	}
	return strings.Join(parts, " "), nil
}

// -------- Model backed --------

type Options struct {
	ChunkSize   int // bytes per chunk sent to the model
	MinWords    int
	MaxWords    int
	Concurrency int
}

type llmSummarizer struct {
	client llm.Client
	opts   Options
}

// NewLLM summarizes text chunk by chunk and joins the partial summaries in
// chunk order.
func NewLLM(client llm.Client, opts Options) Summarizer {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1024
	}
	if opts.MinWords <= 0 {
		opts.MinWords = 50
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 150
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &llmSummarizer{client: client, opts: opts}
}

func (s *llmSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	chunks := textnorm.Chunks(strings.TrimSpace(text), s.opts.ChunkSize)
	if len(chunks) == 0 {
		return "", nil
	}

	slog.DebugContext(ctx, "summarizing", "chunks", len(chunks), "model", s.client.Model())

	summaries := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			resp, err := s.client.Complete(gctx, llm.Request{Messages: []llm.Message{
				{Role: "system", Content: prompt.SummarySystem},
				{Role: "user", Content: prompt.Summary(chunk, s.opts.MinWords, s.opts.MaxWords)},
			}})
			if err != nil {
				return fmt.Errorf("summarize chunk %d/%d: %w", i+1, len(chunks), err)
			}
			summaries[i] = strings.TrimSpace(resp.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(slices.DeleteFunc(summaries, func(s string) bool { return s == "" }), " "), nil
}
