package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msherr/research-assistant/internal/auth"
	"github.com/msherr/research-assistant/internal/chat"
	"github.com/msherr/research-assistant/internal/http/handler"
	"github.com/msherr/research-assistant/internal/http/middleware"
	"github.com/msherr/research-assistant/internal/paper"
	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/takeaway"
)

// Services are the application services the routes dispatch to.
type Services struct {
	Auth      *auth.Service
	Sessions  session.Store
	Papers    *paper.Service
	Chat      *chat.Service
	Extractor *takeaway.Extractor
}

type RouterConfig struct {
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(services.Auth, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler)

	v1 := router.Group("/api/v1", middleware.RequireAuth(services.Auth, cfg.IsProduction))
	{
		paperHandler := handler.NewPaperHandler(services.Papers, services.Sessions)
		PaperRouter(v1.Group("/papers"), paperHandler)

		takeawayHandler := handler.NewTakeawayHandler(services.Extractor)
		v1.POST("/takeaways", takeawayHandler.Extract)

		chatHandler := handler.NewChatHandler(services.Chat)
		ChatRouter(v1.Group("/chat"), chatHandler)
	}
}

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
}

func PaperRouter(rg *gin.RouterGroup, h *handler.PaperHandler) {
	rg.POST("", h.Upload)
	rg.GET("/current", h.Current)
}

func ChatRouter(rg *gin.RouterGroup, h *handler.ChatHandler) {
	rg.POST("", h.Ask)
	rg.GET("/history", h.History)
	rg.DELETE("/history", h.Clear)
}
