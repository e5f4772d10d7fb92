package api

import (
	"aura_oracle/internal/middleware" // Session middleware
	"aura_oracle/internal/service"    // Readings service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RouterConfig holds what the routes need
type RouterConfig struct {
	Readings       *service.Readings // Readings service
	SessionSecret  string            // Session token signing key
	SecureCookie   bool              // Mark the session cookie Secure
	TrustedProxies []string          // Proxies allowed to set client IP headers
}

// NewRouter registers every route on a new gin engine
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	r := gin.Default() // Gin router instance with logger and recovery
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	svc := cfg.Readings

	// Public routes
	r.GET("/", SignupCountHandler(svc))                                        // Signup count
	r.POST("/signup", SignupHandler(svc, cfg.SessionSecret, cfg.SecureCookie)) // Start a session
	r.GET("/daily/:kind/card", CardOfTheDayHandler(svc))                       // Shared card of the day
	r.GET("/api/draw/:kind", RandomDrawHandler(svc))                           // Random catalog item

	// Session routes (protected by the session token)
	user := r.Group("/")
	user.Use(middleware.SessionMiddleware(cfg.SessionSecret), middleware.ActiveUserMiddleware(svc))
	user.GET("/daily", AuraHandler(svc, false))                // Today's aura
	user.POST("/daily/generate", AuraHandler(svc, true))       // Regenerate today's aura
	user.GET("/daily/:kind", DrawHandler(svc, false))          // Today's draw
	user.POST("/daily/:kind/generate", DrawHandler(svc, true)) // Regenerate today's draw
	user.POST("/ask", AskHandler(svc))                         // Ask a question
	user.GET("/questions", QuestionsHandler(svc))              // Question history
	user.GET("/moon", MoonHandler(svc))                        // Ritual suggestion
	user.GET("/tracker", TrackerHandler(svc))                  // Tracker view
	user.POST("/tracker", TrackCardHandler(svc))               // Log a card
	user.DELETE("/me", DeleteMeHandler(svc, cfg.SecureCookie)) // Delete account

	return r, nil
}
