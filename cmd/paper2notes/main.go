package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/msherr/research-assistant/internal/config"
	"github.com/msherr/research-assistant/internal/llm"
	"github.com/msherr/research-assistant/internal/logger"
	"github.com/msherr/research-assistant/internal/paper"
	"github.com/msherr/research-assistant/internal/pdfx"
	"github.com/msherr/research-assistant/internal/summarize"
	"github.com/msherr/research-assistant/internal/takeaway"
)

func main() {
	var (
		pdfPath   = flag.String("pdf", "", "Path to paper PDF")
		cfgPath   = flag.String("config", "", "Optional YAML config")
		llmProv   = flag.String("llm", "", "Override LLM provider (openai|gemini|ollama|anthropic|none)")
		model     = flag.String("model", "", "Override LLM model name")
		takeaways = flag.Int("takeaways", 0, "Number of key takeaways (default from config, 5)")
		outNotes  = flag.String("out", "", "Optional path to write markdown notes")
		showText  = flag.Bool("show-text", false, "Print the extracted text as well")
		debugOut  = flag.String("debug-out", "", "Optional path to dump detected front matter")
	)
	flag.Parse()

	if *pdfPath == "" {
		log.Fatal("missing --pdf path")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// CLI overrides
	if *llmProv != "" {
		cfg.LLM.Provider = *llmProv
	}
	if *model != "" {
		cfg.LLM.Model = *model
	}
	if *takeaways > 0 {
		cfg.Takeaways.Count = *takeaways
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Setup(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ex, err := takeaway.New()
	if err != nil {
		log.Fatalf("takeaways: %v", err)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		log.Fatalf("llm: %v", err)
	}
	var sum summarize.Summarizer
	if client != nil {
		sum = summarize.NewLLM(client, summarize.Options{
			ChunkSize:   cfg.Summary.ChunkSize,
			MinWords:    cfg.Summary.MinWords,
			MaxWords:    cfg.Summary.MaxWords,
			Concurrency: cfg.Summary.Concurrency,
		})
	} else {
		sum = summarize.NewFallback(ex, cfg.Summary.Sentences)
	}

	if *debugOut != "" {
		doc, err := pdfx.Extract(ctx, *pdfPath)
		if err != nil {
			log.Fatalf("pdf extract: %v", err)
		}
		if err := pdfx.SaveDebug(*debugOut, doc); err != nil {
			log.Printf("warn: write debug: %v", err)
		}
	}

	f, err := os.Open(*pdfPath)
	if err != nil {
		log.Fatalf("open pdf: %v", err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		log.Fatalf("open pdf: %v", err)
	}

	// local files are not uploads; no size cap
	svc := paper.NewService(sum, ex, cfg.Takeaways.Count).WithMaxSize(0)
	res, err := svc.Process(ctx, paper.Source{
		Filename: filepath.Base(*pdfPath),
		Data:     f,
		Size:     st.Size(),
	})
	if err != nil {
		log.Fatalf("process: %v", err)
	}

	notes := res.Markdown()
	fmt.Print(notes)
	if *showText {
		fmt.Printf("\n## Extracted text\n\n%s\n", res.Text)
	}

	if *outNotes != "" {
		if err := os.WriteFile(*outNotes, []byte(notes), 0644); err != nil {
			log.Fatalf("write notes: %v", err)
		}
		fmt.Printf("\nWrote notes: %s\n", filepath.Clean(*outNotes))
	}
}

// newLLMClient returns nil when no provider is configured.
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	client, err := llm.NewClient(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if errors.Is(err, llm.ErrDisabled) {
		return nil, nil
	}
	return client, err
}
