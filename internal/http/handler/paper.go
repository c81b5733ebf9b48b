package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msherr/research-assistant/internal/http/dto"
	"github.com/msherr/research-assistant/internal/http/middleware"
	"github.com/msherr/research-assistant/internal/paper"
	"github.com/msherr/research-assistant/internal/pdfx"
	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/textnorm"
)

type PaperHandler struct {
	papers   *paper.Service
	sessions session.Store
}

func NewPaperHandler(papers *paper.Service, sessions session.Store) *PaperHandler {
	return &PaperHandler{papers: papers, sessions: sessions}
}

// Upload processes the multipart "file" field and makes the paper the
// session's current one.
func (h *PaperHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	sess := middleware.GetSession(ctx)

	count := 0
	if q := c.Query("takeaways"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "takeaways must be a non-negative integer"})
			return
		}
		count = n
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing PDF in form field \"file\""})
		return
	}
	if fh.Size > pdfx.MaxPDFSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": pdfx.ErrTooLarge.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		slog.ErrorContext(ctx, "failed to open upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	res, err := h.papers.Process(ctx, paper.Source{
		Filename:  fh.Filename,
		Data:      f,
		Size:      fh.Size,
		Takeaways: count,
	})
	switch {
	case err == nil:
	case errors.Is(err, pdfx.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case errors.Is(err, paper.ErrUnreadable):
		slog.WarnContext(ctx, "unreadable upload", "file", fh.Filename, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	case errors.Is(err, paper.ErrSummary):
		slog.ErrorContext(ctx, "summary failed", "file", fh.Filename, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to summarize paper"})
		return
	default:
		slog.ErrorContext(ctx, "failed to process paper", "file", fh.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process paper"})
		return
	}

	sess.Paper = &session.Paper{
		Filename:   fh.Filename,
		Title:      res.Title,
		Authors:    res.Authors,
		Summary:    res.Summary,
		Takeaways:  res.Takeaways,
		Text:       res.Text,
		Pages:      res.Pages,
		UploadedAt: time.Now().UTC(),
	}
	if err := h.sessions.Update(ctx, sess); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		slog.ErrorContext(ctx, "failed to store paper in session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store paper"})
		return
	}

	c.JSON(http.StatusOK, dto.ToPaperResponse(sess.Paper, res.Words))
}

func (h *PaperHandler) Current(c *gin.Context) {
	sess := middleware.GetSession(c.Request.Context())
	if sess.Paper == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no paper uploaded"})
		return
	}
	c.JSON(http.StatusOK, dto.ToPaperResponse(sess.Paper, textnorm.CountWords(sess.Paper.Text)))
}
