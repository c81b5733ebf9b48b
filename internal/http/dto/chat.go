package dto

import "github.com/msherr/research-assistant/internal/store"

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type ChatHistoryResponse struct {
	Messages []store.ChatMessage `json:"messages"`
}
