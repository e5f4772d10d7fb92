package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"aura_oracle/internal/utils" // Session token helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionCookie is the cookie carrying the session token
const SessionCookie = "session"

// SessionMiddleware validates the session token and stores the user ID in the context
func SessionMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c) // Cookie first, then Authorization header
		// Reject requests without a session
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret) // Parse the session token
		if err != nil {
			// If parsing fails, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Next()                       // Proceed to the next handler
	}
}

// sessionToken extracts the token from the session cookie or a Bearer header
func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie // Browser session
	}
	authHeader := c.GetHeader("Authorization") // API clients
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
