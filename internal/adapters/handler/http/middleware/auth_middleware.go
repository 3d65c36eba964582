package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	TokenCookieName     = "token"
	ContextUserIDKey    = "userID"
)

// TokenValidator resolves an access token to a user id.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// tokenFromRequest prefers the Authorization header and falls back to the
// session cookie set at login.
func tokenFromRequest(c *gin.Context) (string, string) {
	if authHeader := c.GetHeader(authorizationHeader); authHeader != "" {
		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != authorizationType {
			return "", "invalid authorization header format"
		}
		return fields[1], ""
	}

	if cookie, err := c.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie, ""
	}
	return "", "authentication required"
}

func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := tokenFromRequest(c)
		if problem != "" {
			unauthorized(c, problem)
			return
		}

		userID, err := tokens.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextUserIDKey, userID)

		c.Next()
	}
}

func GetUserID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok && idStr != ""
}
