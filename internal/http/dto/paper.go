package dto

import (
	"time"

	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/takeaway"
)

type PaperResponse struct {
	Filename   string              `json:"filename"`
	Title      string              `json:"title"`
	Authors    string              `json:"authors"`
	Summary    string              `json:"summary"`
	Takeaways  []takeaway.Takeaway `json:"takeaways"`
	Text       string              `json:"text"`
	Pages      int                 `json:"pages"`
	Words      int                 `json:"words"`
	UploadedAt time.Time           `json:"uploaded_at"`
}

func ToPaperResponse(p *session.Paper, words int) *PaperResponse {
	return &PaperResponse{
		Filename:   p.Filename,
		Title:      p.Title,
		Authors:    p.Authors,
		Summary:    p.Summary,
		Takeaways:  p.Takeaways,
		Text:       p.Text,
		Pages:      p.Pages,
		Words:      words,
		UploadedAt: p.UploadedAt,
	}
}

type TakeawaysRequest struct {
	Text  string `json:"text" binding:"required"`
	Count *int   `json:"count,omitempty" binding:"omitempty,max=100"`
}

type TakeawaysResponse struct {
	Takeaways []takeaway.Takeaway `json:"takeaways"`
}
