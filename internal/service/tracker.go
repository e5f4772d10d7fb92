package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"aura_oracle/internal/domain"
)

// TrackerView is a user's recent tracker log and most logged cards.
type TrackerView struct {
	Recent []domain.TrackedCard `json:"recent"`
	Top    []domain.CardCount   `json:"top"`
}

// TrackCard logs a card the user drew on their own. Names found in either
// catalog are stored with their catalog spelling.
func (r *Readings) TrackCard(ctx context.Context, userID, name, notes string) (*domain.TrackedCard, error) {
	name = strings.TrimSpace(name) // Ignore surrounding whitespace
	if name == "" {
		return nil, domain.NewValidationError(domain.CodeEmptyCardName, "card name is empty")
	}
	if utf8.RuneCountInString(name) > MaxCardNameRunes {
		return nil, domain.NewValidationError(domain.CodeCardNameTooLong, "card name is too long") // Would overflow the column
	}
	for _, kind := range []domain.Kind{domain.KindTarot, domain.KindRune} {
		if it, ok := r.catalogs.Get(kind).Lookup(name); ok {
			name = it.Name // Canonical catalog spelling
			break
		}
	}
	return r.store.AddCard(ctx, userID, name, strings.TrimSpace(notes)) // Notes are free text
}

// Tracker returns the user's tracker view.
func (r *Readings) Tracker(ctx context.Context, userID string) (*TrackerView, error) {
	recent, err := r.store.ListCards(ctx, userID, TrackerRecent)
	if err != nil {
		return nil, err
	}
	top, err := r.store.TopCards(ctx, userID, TrackerTopCards)
	if err != nil {
		return nil, err
	}
	return &TrackerView{Recent: recent, Top: top}, nil
}
