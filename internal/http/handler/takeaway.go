package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msherr/research-assistant/internal/http/dto"
	"github.com/msherr/research-assistant/internal/takeaway"
)

type TakeawayHandler struct {
	extractor *takeaway.Extractor
}

func NewTakeawayHandler(extractor *takeaway.Extractor) *TakeawayHandler {
	return &TakeawayHandler{extractor: extractor}
}

// Extract ranks the sentences of arbitrary text. A missing count means
// takeaway.DefaultCount; zero or less yields no takeaways.
func (h *TakeawayHandler) Extract(c *gin.Context) {
	var req dto.TakeawaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count := takeaway.DefaultCount
	if req.Count != nil {
		count = *req.Count
	}

	c.JSON(http.StatusOK, dto.TakeawaysResponse{
		Takeaways: h.extractor.ExtractScored(req.Text, count),
	})
}
