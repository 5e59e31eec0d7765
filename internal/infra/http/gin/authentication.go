package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/services/auth"
	"staybook/internal/app/viewer"
)

const sessionCookieName = "token"

// AuthMiddleware resolves the request credential to a viewer exactly once
// and threads it through the request context. Handlers never touch tokens.
type AuthMiddleware struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	if m.Service == nil {
		c.Next()
		return
	}
	token := extractToken(c)
	v, err := m.Service.ResolveViewer(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrMalformedCredential) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("MALFORMED_CREDENTIAL", "credential could not be parsed"))
			return
		}
		if m.Logger != nil {
			m.Logger.Error("viewer resolution failed", "error", err)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("INTERNAL", "something went wrong"))
		return
	}
	c.Request = c.Request.WithContext(viewer.WithViewer(c.Request.Context(), v))
	c.Next()
}

// extractToken prefers the Authorization bearer header, falling back to
// the session cookie browser clients carry.
func extractToken(c *gin.Context) string {
	if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
