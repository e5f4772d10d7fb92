package api

import (
	"net/http" // HTTP status codes
	"time"     // Token issue time

	"aura_oracle/internal/middleware" // Session cookie name
	"aura_oracle/internal/service"    // Readings service
	"aura_oracle/internal/utils"      // Session token helpers

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// SignupRequest starts a session for an email address
type SignupRequest struct {
	Email string `json:"email" form:"email"` // Address, trimmed and lowercased
}

// SignupCountHandler returns how many users have signed up
func SignupCountHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.SignupCount(c.Request.Context()) // Count users
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "signup_count": n})
	}
}

// SignupHandler finds or creates the user and issues a session cookie
func SignupHandler(svc *service.Readings, secret string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON or form body
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c)
			return
		}
		user, err := svc.Signup(c.Request.Context(), req.Email) // Validate and store
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := utils.GenerateJWT(user.ID, secret, time.Now()) // Issue session token, wall clock expiry
		if err != nil {
			logrus.WithFields(logrus.Fields{"user_id": user.ID, "error": err.Error()}).Error("Failed to sign session")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.SessionCookie, token, int(utils.SessionTTL.Seconds()), "/", "", secureCookie, true)
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,    // Success flag
			"user_id": user.ID, // Stable user identifier
			"token":   token,   // Same value as the cookie, for API clients
		})
	}
}

// DeleteMeHandler removes the current user and everything they own
func DeleteMeHandler(svc *service.Readings, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID") // Set by SessionMiddleware
		if err := svc.DeleteAccount(c.Request.Context(), userID); err != nil {
			respondError(c, err)
			return
		}
		c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secureCookie, true) // Clear the session
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
