package token

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/shelfmark/shelfmark-web/internal/constant"
)

// UserContext contains user information extracted from a session token
type UserContext struct {
	UserID          string `json:"user_id"`
	Email           string `json:"email"`
	IsAuthenticated bool   `json:"is_authenticated"`
}

// Claims are the session JWT claims; the subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserFrom returns the user stored by ExtractUserInfo.
func UserFrom(c *gin.Context) (*UserContext, bool) {
	v, exists := c.Get(constant.UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*UserContext)
	return user, ok && user != nil
}
