package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/msherr/research-assistant/internal/auth"
	"github.com/msherr/research-assistant/internal/http/dto"
	"github.com/msherr/research-assistant/internal/http/middleware"
)

type AuthHandler struct {
	authService  *auth.Service
	isProduction bool
}

func NewAuthHandler(authService *auth.Service, isProduction bool) *AuthHandler {
	return &AuthHandler{authService: authService, isProduction: isProduction}
}

func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authService.Register(ctx, req.Username, req.Password, req.ConfirmPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"username": req.Username})
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrPasswordMismatch),
		errors.Is(err, auth.ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, "failed to register user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.authService.Login(ctx, req.Username, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMissingFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, auth.ErrUnknownUser), errors.Is(err, auth.ErrWrongPassword):
		slog.InfoContext(ctx, "login rejected", "username", req.Username, "reason", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	default:
		slog.ErrorContext(ctx, "failed to log in", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	middleware.SetSessionCookie(c, sess.Token, maxAge, h.isProduction)

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token:     sess.Token,
		Username:  sess.Username,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.authService.Logout(ctx, middleware.Token(c)); err != nil {
		slog.WarnContext(ctx, "failed to delete session", "error", err)
	}
	middleware.ClearSessionCookie(c, h.isProduction)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
