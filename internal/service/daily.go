package service

import (
	"context"

	"aura_oracle/internal/catalog"
	"aura_oracle/internal/domain"
	"aura_oracle/internal/oracle"

	"github.com/sirupsen/logrus"
)

// AuraView is today's aura with recent history.
type AuraView struct {
	Today     *domain.DailyEntry  `json:"today"`
	History   []domain.DailyEntry `json:"history"`
	Generated bool                `json:"generated"`
	Offline   bool                `json:"offline"`
}

// DrawView is today's draw of one kind with recent history.
type DrawView struct {
	Kind      domain.Kind        `json:"kind"`
	Today     *domain.DailyDraw  `json:"today"`
	Image     string             `json:"image,omitempty"`
	History   []domain.DailyDraw `json:"history"`
	Generated bool               `json:"generated"`
	Offline   bool               `json:"offline"`
}

// ViewAura returns today's aura, generating it only when none exists yet.
func (r *Readings) ViewAura(ctx context.Context, userID string) (*AuraView, error) {
	return r.aura(ctx, userID, false)
}

// GenerateAura always produces fresh content and overwrites today's entry.
func (r *Readings) GenerateAura(ctx context.Context, userID string) (*AuraView, error) {
	return r.aura(ctx, userID, true)
}

func (r *Readings) aura(ctx context.Context, userID string, regenerate bool) (*AuraView, error) {
	day := r.Today() // UTC day key
	view := &AuraView{}
	if !regenerate {
		existing, err := r.store.TodayEntry(ctx, userID, day)
		if err != nil {
			return nil, err
		}
		view.Today = existing // A stored entry is returned as is
	}
	if view.Today == nil {
		content, err := r.gateway.Generate(ctx, oracle.Request{Kind: domain.KindAura}) // Never fails for aura
		if err != nil {
			return nil, err
		}
		a := content.Aura
		fresh := domain.DailyEntry{
			UserID:      userID,
			EntryDate:   day,
			AuraColor:   a.Color,
			Emotion:     a.Emotion,
			Keywords:    a.Keywords,
			Affirmation: a.Affirmation,
		}
		var entry *domain.DailyEntry
		created := true
		if regenerate {
			entry, err = r.store.UpsertEntry(ctx, fresh) // Overwrite today's entry
		} else {
			entry, created, err = r.store.CreateEntryIfAbsent(ctx, fresh) // A concurrent view may have won
		}
		if err != nil {
			r.logStoreFailure("aura", userID, err)
			return nil, err
		}
		view.Today, view.Generated, view.Offline = entry, created, created && a.Offline
		r.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"date":       day,
			"offline":    a.Offline,
			"regenerate": regenerate,
			"kept":       !created,
		}).Info("Aura generated")
	}
	history, err := r.store.EntryHistory(ctx, userID, AuraHistoryDays) // Includes today
	if err != nil {
		return nil, err
	}
	view.History = history
	return view, nil
}

// ViewDraw returns today's draw of kind, generating it only when none exists yet.
func (r *Readings) ViewDraw(ctx context.Context, userID string, kind domain.Kind) (*DrawView, error) {
	return r.draw(ctx, userID, kind, "", false)
}

// GenerateDraw always produces a fresh draw of kind, optionally around the
// card or rune named by hint, and overwrites today's draw.
func (r *Readings) GenerateDraw(ctx context.Context, userID string, kind domain.Kind, hint string) (*DrawView, error) {
	return r.draw(ctx, userID, kind, hint, true)
}

func (r *Readings) draw(ctx context.Context, userID string, kind domain.Kind, hint string, regenerate bool) (*DrawView, error) {
	if err := requireDrawKind(kind); err != nil {
		return nil, err // Rejected before any store or provider call
	}
	cat := r.catalogs.Get(kind)
	day := r.Today() // UTC day key
	view := &DrawView{Kind: kind}
	if !regenerate {
		existing, err := r.store.TodayDraw(ctx, userID, kind, day)
		if err != nil {
			return nil, err
		}
		view.Today = existing // A stored draw is returned as is
	}
	if view.Today == nil {
		if hint != "" {
			hint = cat.Canonical(hint) // Catalog spelling when known
		}
		content, err := r.gateway.Generate(ctx, oracle.Request{Kind: kind, Hint: hint})
		if err != nil {
			return nil, err
		}
		d := content.Draw
		fresh := domain.DailyDraw{
			UserID:      userID,
			DrawDate:    day,
			Kind:        kind,
			Name:        cat.Canonical(d.Name), // Stored records carry canonical names only
			Keywords:    d.Keywords,
			Meaning:     d.Meaning,
			Affirmation: d.Affirmation,
		}
		var row *domain.DailyDraw
		created := true
		if regenerate {
			row, err = r.store.UpsertDraw(ctx, fresh) // Overwrite today's draw
		} else {
			row, created, err = r.store.CreateDrawIfAbsent(ctx, fresh) // A concurrent view may have won
		}
		if err != nil {
			r.logStoreFailure(string(kind), userID, err)
			return nil, err
		}
		view.Today, view.Generated, view.Offline = row, created, created && d.Offline
		r.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"kind":       string(kind),
			"date":       day,
			"name":       row.Name,
			"offline":    d.Offline,
			"regenerate": regenerate,
			"kept":       !created,
		}).Info("Daily draw generated")
	}
	view.Image = r.image(kind, view.Today.Name) // Resolved at read time, never stored
	history, err := r.store.DrawHistory(ctx, userID, kind, DrawHistoryDays)
	if err != nil {
		return nil, err
	}
	view.History = history
	return view, nil
}

// CardOfTheDay returns the item shared by every user for kind today, or nil
// when the catalog is empty.
func (r *Readings) CardOfTheDay(kind domain.Kind) (*catalog.Item, error) {
	if err := requireDrawKind(kind); err != nil {
		return nil, err
	}
	cat := r.catalogs.Get(kind)
	return cat.Pick(catalog.DailySeed(cat, r.Today())), nil
}

// RandomDraw returns a random item of kind without persisting it.
func (r *Readings) RandomDraw(kind domain.Kind) (*catalog.Item, error) {
	if err := requireDrawKind(kind); err != nil {
		return nil, err
	}
	return r.catalogs.Get(kind).Random(), nil
}

// Ritual is the moon page content.
type Ritual struct {
	Today  string `json:"today"`
	Ritual string `json:"ritual"`
}

// MoonRitual suggests a ritual for today. Nothing is stored.
func (r *Readings) MoonRitual(ctx context.Context) Ritual {
	day := r.Today()
	return Ritual{Today: day, Ritual: r.gateway.Ritual(ctx, day)}
}

func requireDrawKind(kind domain.Kind) error {
	if kind != domain.KindTarot && kind != domain.KindRune {
		return domain.NewValidationError(domain.CodeUnknownKind, "unknown kind: "+string(kind))
	}
	return nil
}

func (r *Readings) logStoreFailure(kind, userID string, err error) {
	r.log.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    kind,
		"error":   err.Error(),
	}).Error("Failed to store reading")
}
