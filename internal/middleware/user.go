package middleware

import (
	"context"  // Context for the lookup
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// UserChecker reports whether a user still exists
type UserChecker interface {
	UserExists(ctx context.Context, id string) (bool, error)
}

// ActiveUserMiddleware checks on each request that the session's user was not deleted
func ActiveUserMiddleware(users UserChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID") // Set by SessionMiddleware
		// Check if userID exists in context
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		ok, err := users.UserExists(c.Request.Context(), userID) // Look the user up
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Failed to check session user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
			return
		}
		// A deleted account keeps a valid token until it expires
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
