package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msherr/research-assistant/internal/auth"
	"github.com/msherr/research-assistant/internal/logger"
	"github.com/msherr/research-assistant/internal/session"
)

type contextKey string

const (
	SessionCookieName = "ra_session"

	sessionContextKey contextKey = "session"
)

// RequireAuth resolves the session token from an "Authorization: Bearer"
// header or the session cookie and aborts with 401 when it is missing or
// no longer valid. secure marks the cookie cleared on expiry as HTTPS-only.
func RequireAuth(authService *auth.Service, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			return
		}

		sess, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				ClearSessionCookie(c, secure)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), sessionContextKey, sess)
		ctx = logger.WithLogFields(ctx, logger.LogFields{Username: sess.Username})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSession returns the session attached by RequireAuth.
func GetSession(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

// Token returns the bearer token, falling back to the session cookie.
func Token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie
}

func SetSessionCookie(c *gin.Context, token string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
