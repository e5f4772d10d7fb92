// Package store persists readings. Daily artifacts are written only through
// upserts keyed on (user, day) or (user, kind, day), so each key holds at most
// one row no matter how many generate calls race.
package store

import (
	"errors"
	"strings"
	"time"

	"aura_oracle/internal/clock"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store wraps the relational database and the optional history cache.
type Store struct {
	db       *gorm.DB           // Relational database
	rdb      *redis.Client      // Optional cache, nil disables caching
	clock    clock.Clock        // Source of created_at stamps
	cacheTTL time.Duration      // History cache lifetime
	log      logrus.FieldLogger // Structured logger
}

// Option customizes a Store.
type Option func(*Store)

// WithRedis caches history lists in rdb for ttl.
func WithRedis(rdb *redis.Client, ttl time.Duration) Option {
	return func(s *Store) {
		s.rdb = rdb      // Cache client
		s.cacheTTL = ttl // Cache lifetime
	}
}

// WithClock sets the clock used for created_at stamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New builds a Store on db.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, clock: clock.System{}, cacheTTL: time.Minute, log: logrus.StandardLogger()} // Defaults: system clock, one minute cache, standard logger
	for _, o := range opts {
		o(s) // Apply option
	}
	return s
}

func (s *Store) now() time.Time { return s.clock.Now().UTC() }

// isDuplicate reports a unique-constraint violation on any supported driver.
func isDuplicate(err error) bool {
	if err == nil {
		return false // Nothing to classify
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true // Translated by gorm
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") ||  // mysql
		strings.Contains(msg, "duplicate key value") // postgres
}
