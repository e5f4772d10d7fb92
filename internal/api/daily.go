package api

import (
	"net/http" // HTTP status codes

	"aura_oracle/internal/catalog" // Catalog items
	"aura_oracle/internal/domain"  // Kinds
	"aura_oracle/internal/service" // Readings service

	"github.com/gin-gonic/gin" // Gin web framework
)

// DrawRequest optionally names the card or rune to build the draw around
type DrawRequest struct {
	Name string `json:"name" form:"name"` // Hint, matched against the catalog
}

// AuraHandler returns today's aura. With regenerate it always overwrites today's entry
func AuraHandler(svc *service.Readings, regenerate bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID") // Set by SessionMiddleware
		var view *service.AuraView
		var err error
		if regenerate {
			view, err = svc.GenerateAura(c.Request.Context(), userID) // Always overwrite
		} else {
			view, err = svc.ViewAura(c.Request.Context(), userID) // Generate only when missing
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":        true,           // Success flag
			"today":     view.Today,     // Today's entry
			"history":   view.History,   // Recent entries, newest first
			"generated": view.Generated, // Whether this request produced the entry
			"offline":   view.Offline,   // Whether the offline payload was used
		})
	}
}

// DrawHandler returns today's draw of the kind in the path
func DrawHandler(svc *service.Readings, regenerate bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := domain.ParseDrawKind(c.Param("kind")) // tarot, rune or runes
		if err != nil {
			respondError(c, err)
			return
		}
		userID := c.GetString("userID") // Set by SessionMiddleware
		var view *service.DrawView
		if regenerate {
			var req DrawRequest // Optional body
			if c.Request.ContentLength > 0 {
				if err := c.ShouldBind(&req); err != nil {
					badRequest(c)
					return
				}
			}
			view, err = svc.GenerateDraw(c.Request.Context(), userID, kind, req.Name)
		} else {
			view, err = svc.ViewDraw(c.Request.Context(), userID, kind)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"ok":        true,           // Success flag
			"kind":      view.Kind,      // Normalized kind
			"today":     view.Today,     // Today's draw
			"image":     view.Image,     // Catalog asset for the drawn name
			"history":   view.History,   // Recent draws of this kind
			"generated": view.Generated, // Whether this request produced the draw
			"offline":   view.Offline,   // Whether the offline payload was used
		})
	}
}

// CardOfTheDayHandler returns the card shared by every user today
func CardOfTheDayHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := domain.ParseDrawKind(c.Param("kind"))
		if err != nil {
			respondError(c, err)
			return
		}
		item, err := svc.CardOfTheDay(kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemResponse(kind, item, gin.H{"day": svc.Today()}))
	}
}

// RandomDrawHandler returns a random catalog item, not persisted
func RandomDrawHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := domain.ParseDrawKind(c.Param("kind"))
		if err != nil {
			respondError(c, err)
			return
		}
		item, err := svc.RandomDraw(kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemResponse(kind, item, nil))
	}
}

// itemResponse renders a catalog pick, with null card and image when nothing was picked
func itemResponse(kind domain.Kind, item *catalog.Item, extra gin.H) gin.H {
	out := gin.H{"ok": true, "kind": kind, "card": nil, "image": nil}
	if item != nil {
		out["card"], out["image"] = item.Name, item.Asset
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// MoonHandler suggests today's ritual
func MoonHandler(svc *service.Readings) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := svc.MoonRitual(c.Request.Context()) // Never fails, falls back offline
		c.JSON(http.StatusOK, gin.H{"ok": true, "today": r.Today, "ritual": r.Ritual})
	}
}
