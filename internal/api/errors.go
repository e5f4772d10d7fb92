package api

import (
	"errors"   // Error matching
	"math"     // Rounding retry delays
	"net/http" // HTTP status codes
	"strconv"  // Header formatting

	"aura_oracle/internal/domain" // Error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError maps a service error to its HTTP response
func respondError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	var rl *domain.RateLimitedError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ve.Code}) // Reason code only
	case errors.As(err, &rl):
		secs := int64(math.Ceil(rl.RetryAfter.Seconds())) // Whole seconds, rounded up
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"ok":                  false,     // Failure flag
			"error":               rl.Code(), // rate_limited
			"retry_after_seconds": secs,      // Time left in the window
		})
	case errors.Is(err, domain.ErrUnknownUser):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"}) // Session outlived its user
	default:
		// Store failures and anything unexpected stay generic for the client
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
	}
}

// badRequest answers a body that could not be bound
func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": domain.CodeInvalidRequest})
}
