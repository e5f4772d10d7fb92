package api

import (
	"net/http" // HTTP status codes

	"aura_oracle/internal/service" // Readings service

	"github.com/gin-gonic/gin" // Gin web framework
)

// AskRequest carries a free-form question
type AskRequest struct {
	Question string `json:"question" form:"question"` // Question text
}

// AskHandler answers a question, at most one per user per window
func AskHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AskRequest // Bind JSON or form body
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c)
			return
		}
		userID := c.GetString("userID") // Set by SessionMiddleware
		res, err := svc.Ask(c.Request.Context(), userID, req.Question)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":           true,                   // Success flag
			"question_id":  res.Question.ID,        // Stored question
			"question":     res.Question.Content,   // Trimmed question text
			"answer":       res.Answer.Body,        // Answer body
			"affirmation":  res.Answer.Affirmation, // "I am ..." line
			"tags":         res.Answer.TagsCSV,     // Comma-separated tags
			"primary_card": res.PrimaryCard,        // Canonical card name, if any
			"image":        res.Image,              // Card asset, if known
			"offline":      res.Offline,            // Whether the offline payload was used
		})
	}
}

// QuestionsHandler lists the user's recent questions
func QuestionsHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID") // Set by SessionMiddleware
		view, err := svc.Questions(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":              true,               // Success flag
			"items":           view.Items,         // Newest first
			"last_asked_at":   view.LastAskedAt,   // Null before the first question
			"next_allowed_at": view.NextAllowedAt, // Null when asking is allowed now
		})
	}
}
