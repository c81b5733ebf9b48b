package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/msherr/research-assistant/internal/auth"
	"github.com/msherr/research-assistant/internal/chat"
	"github.com/msherr/research-assistant/internal/config"
	"github.com/msherr/research-assistant/internal/http/middleware"
	httprouter "github.com/msherr/research-assistant/internal/http/router"
	"github.com/msherr/research-assistant/internal/llm"
	"github.com/msherr/research-assistant/internal/logger"
	"github.com/msherr/research-assistant/internal/paper"
	"github.com/msherr/research-assistant/internal/pdfx"
	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/store"
	"github.com/msherr/research-assistant/internal/summarize"
	"github.com/msherr/research-assistant/internal/takeaway"
	"github.com/msherr/research-assistant/internal/telemetry"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid config", "error", err)
		os.Exit(1)
	}

	// the logger bridges to the OTel provider, so telemetry goes first
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if tel != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}
	slog.InfoContext(ctx, "research assistant starting", "env", cfg.Env, "llm", cfg.LLM.Provider)

	stores, err := store.Open(store.Config{
		Driver:          cfg.Store.Driver,
		CredentialsFile: cfg.Store.CredentialsFile,
		ChatHistoryFile: cfg.Store.ChatHistoryFile,
		BoltPath:        cfg.Store.BoltPath,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to open store", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	sessions, closeSessions, err := session.Open(ctx, session.Config{
		Driver:   cfg.Session.Driver,
		TTL:      cfg.Session.TTL,
		RedisURL: cfg.Session.RedisURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to open session store", "error", err)
		os.Exit(1)
	}
	defer closeSessions()

	ex, err := takeaway.New()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load sentence model", "error", err)
		os.Exit(1)
	}

	client, err := newLLMClient(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}

	var sum summarize.Summarizer
	if client != nil {
		slog.InfoContext(ctx, "llm enabled", "provider", cfg.LLM.Provider, "model", client.Model())
		sum = summarize.NewLLM(client, summarize.Options{
			ChunkSize:   cfg.Summary.ChunkSize,
			MinWords:    cfg.Summary.MinWords,
			MaxWords:    cfg.Summary.MaxWords,
			Concurrency: cfg.Summary.Concurrency,
		})
	} else {
		slog.WarnContext(ctx, "llm disabled: extractive summaries only, chat unavailable")
		sum = summarize.NewFallback(ex, cfg.Summary.Sentences)
	}

	services := httprouter.Services{
		Auth:      auth.NewService(stores.Credentials, sessions),
		Sessions:  sessions,
		Papers:    paper.NewService(sum, ex, cfg.Takeaways.Count),
		Chat:      chat.NewService(client, stores.Chats, cfg.Chat.ContextWords),
		Extractor: ex,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	// summarizing a long paper takes several model round trips, hence the
	// long write timeout
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if tel != nil {
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg *config.Config, services httprouter.Services) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = pdfx.MaxPDFSize

	// OTel span first so recovery and request logs carry the trace id
	if cfg.OTelEnabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		IsProduction: cfg.IsProduction(),
	})

	return router
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
