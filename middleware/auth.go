package middleware

import (
	"net/http"
	"strings"

	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/gin-gonic/gin"
)

const (
	contextUserID = "user_id"
	contextEmail  = "email"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	ParseAccessToken(token string) (*utils.Claims, error)
}

// AuthMiddleware rejects requests without a valid Bearer token and stores the
// caller's id in the context.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := parser.ParseAccessToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Next()
	}
}

// GetUserID returns the authenticated user's id, or "" outside AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}
