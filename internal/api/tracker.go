package api

import (
	"net/http" // HTTP status codes

	"aura_oracle/internal/service" // Readings service

	"github.com/gin-gonic/gin" // Gin web framework
)

// TrackRequest logs a card
type TrackRequest struct {
	CardName string `json:"card_name" form:"card_name"` // Card or rune name
	Notes    string `json:"notes" form:"notes"`         // Optional notes
}

// TrackerHandler returns recent tracker entries and the most logged cards
func TrackerHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID") // Set by SessionMiddleware
		view, err := svc.Tracker(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "recent": view.Recent, "top": view.Top})
	}
}

// TrackCardHandler appends a tracker entry
func TrackCardHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TrackRequest // Bind JSON or form body
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c)
			return
		}
		userID := c.GetString("userID") // Set by SessionMiddleware
		card, err := svc.TrackCard(c.Request.Context(), userID, req.CardName, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "card": card})
	}
}
