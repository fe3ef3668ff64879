package token

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfmark/shelfmark-web/internal/constant"
	"github.com/shelfmark/shelfmark-web/internal/logger"
)

type Handler struct {
	logger *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Production()
	}
	return &Handler{
		logger: log,
	}
}

// ExtractUserInfo validates the session token from the Authorization header, or from the
// session cookie for browser requests, and stores the caller in the gin context.
func (h *Handler) ExtractUserInfo(reviewer *Reviewer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format. Use: Authorization: Bearer <token>"})
			c.Abort()
			return
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		userContext, err := reviewer.ExtractUserInfo(c.Request.Context(), tokenString)
		if err != nil {
			h.logger.Warn("Token validation failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "validation failed"})
			c.Abort()
			return
		}

		if !userContext.IsAuthenticated {
			h.logger.Info("Token is not authenticated", "user", userContext.UserID)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}

		c.Set(constant.UserContextKey, userContext)
		c.Next()
	}
}

// bearerToken returns the token and whether the Authorization header, if present, was well formed.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		cookie, err := c.Cookie(constant.SessionCookie)
		if err != nil {
			return "", true
		}
		return strings.TrimSpace(cookie), true
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")), true
}
