package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msherr/research-assistant/internal/chat"
	"github.com/msherr/research-assistant/internal/http/dto"
	"github.com/msherr/research-assistant/internal/http/middleware"
)

type ChatHandler struct {
	chatService *chat.Service
}

func NewChatHandler(chatService *chat.Service) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Ask answers a question about the session's current paper, if any.
func (h *ChatHandler) Ask(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(ctx)

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var paperText string
	if sess.Paper != nil {
		paperText = sess.Paper.Text
	}

	answer, err := h.chatService.Ask(ctx, sess.Username, paperText, req.Message)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.ChatResponse{Answer: answer})
	case errors.Is(err, chat.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrNoModel):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrGenerate):
		slog.ErrorContext(ctx, "llm request failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "the assistant could not answer, try again later"})
	default:
		slog.ErrorContext(ctx, "failed to answer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer"})
	}
}

func (h *ChatHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(ctx)

	msgs, err := h.chatService.History(ctx, sess.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load chat history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat history"})
		return
	}
	c.JSON(http.StatusOK, dto.ChatHistoryResponse{Messages: msgs})
}

func (h *ChatHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(ctx)

	if err := h.chatService.Clear(ctx, sess.Username); err != nil {
		slog.ErrorContext(ctx, "failed to clear chat history", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear chat history"})
		return
	}
	c.Status(http.StatusNoContent)
}
