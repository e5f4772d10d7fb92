// Package service orchestrates readings: it decides when content must be
// generated, persists it through the store and gates questions through the
// limiter.
package service

import (
	"aura_oracle/internal/catalog"
	"aura_oracle/internal/clock"
	"aura_oracle/internal/domain"
	"aura_oracle/internal/limiter"
	"aura_oracle/internal/oracle"
	"aura_oracle/internal/store"

	"github.com/sirupsen/logrus"
)

// List sizes and input bounds used by Readings.
const (
	AuraHistoryDays  = 14   // Aura entries in the history list
	DrawHistoryDays  = 10   // Draws per kind in the history list
	QuestionHistory  = 20   // Questions in the history list
	TrackerRecent    = 50   // Recent tracker entries
	TrackerTopCards  = 5    // Most logged cards
	MaxQuestionRunes = 2000 // Longest accepted question
	MaxCardNameRunes = 128  // cards.card_name column size
	MaxEmailRunes    = 255  // users.email column size
)

// Deps are the collaborators of Readings. Catalogs, Clock and Logger default
// when unset.
type Deps struct {
	Store    *store.Store
	Gateway  *oracle.Gateway
	Limiter  *limiter.Limiter
	Catalogs catalog.Set
	Clock    clock.Clock
	Logger   logrus.FieldLogger
}

// Readings serves every reading operation for a signed-in user.
type Readings struct {
	store    *store.Store
	gateway  *oracle.Gateway
	limiter  *limiter.Limiter
	catalogs catalog.Set
	clock    clock.Clock
	log      logrus.FieldLogger
}

// NewReadings wires a Readings service.
func NewReadings(d Deps) *Readings {
	r := &Readings{
		store:    d.Store,
		gateway:  d.Gateway,
		limiter:  d.Limiter,
		catalogs: d.Catalogs,
		clock:    d.Clock,
		log:      d.Logger,
	}
	if r.catalogs == nil {
		r.catalogs = catalog.Default() // Built-in tarot and rune decks
	}
	if r.clock == nil {
		r.clock = clock.System{} // Wall clock
	}
	if r.log == nil {
		r.log = logrus.StandardLogger() // Global logrus logger
	}
	return r
}

// Today returns the current UTC day key.
func (r *Readings) Today() string { return clock.Today(r.clock) }

// image resolves the display asset of a stored card name, or "" when the
// name is not in the catalog of kind.
func (r *Readings) image(kind domain.Kind, name string) string {
	it, ok := r.catalogs.Get(kind).Lookup(name)
	if !ok {
		return ""
	}
	return it.Asset
}
