// Package limiter admits at most one question per user per rolling window.
package limiter

import (
	"context"
	"errors"
	"time"

	"aura_oracle/internal/clock"
	"aura_oracle/internal/domain"
	"aura_oracle/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultWindow   = 24 * time.Hour        // Minimum spacing between two questions of one user
	DefaultLockWait = 2 * time.Second       // How long to wait for another instance's lock
	lockTTL         = 10 * time.Second      // Redis lock expiry if the holder dies
	lockPoll        = 50 * time.Millisecond // Retry interval while the lock is held
)

// Decision is the outcome of TryConsume. When Allowed, Question is the row
// that now occupies the user's window.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Question   *domain.Question
}

// Limiter gates question submissions.
type Limiter struct {
	db       *gorm.DB
	rdb      *redis.Client
	clock    clock.Clock
	window   time.Duration
	lockWait time.Duration
	log      logrus.FieldLogger
	locks    *keyedMutex
}

// Config holds Limiter collaborators. Only DB is required.
type Config struct {
	DB       *gorm.DB           // Questions and users
	Redis    *redis.Client      // Optional cross-instance lock
	Clock    clock.Clock        // Defaults to the system clock
	Window   time.Duration      // Defaults to DefaultWindow
	LockWait time.Duration      // Defaults to DefaultLockWait
	Logger   logrus.FieldLogger // Defaults to the standard logger
}

// New builds a Limiter.
func New(cfg Config) *Limiter {
	l := &Limiter{
		db:       cfg.DB,
		rdb:      cfg.Redis,
		clock:    cfg.Clock,
		window:   cfg.Window,
		lockWait: cfg.LockWait,
		log:      cfg.Logger,
		locks:    newKeyedMutex(),
	}
	if l.clock == nil {
		l.clock = clock.System{}
	}
	if l.window <= 0 {
		l.window = DefaultWindow
	}
	if l.lockWait <= 0 {
		l.lockWait = DefaultLockWait
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	return l
}

// TryConsume checks the user's window and, when open, records the question
// in the same transaction. Same-user calls are serialized in-process, across
// instances through a short redis lock, and in the database by locking the
// user row.
func (l *Limiter) TryConsume(ctx context.Context, userID, content string) (Decision, error) {
	unlock := l.locks.Lock(userID) // Same-process callers queue here
	defer unlock()
	release := l.acquire(ctx, userID) // Cross-instance lock, best effort
	defer release()

	var decision Decision
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		// Row lock serializes same-user transactions even without redis
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUnknownUser
			}
			return err
		}

		now := l.clock.Now().UTC()
		var last []domain.Question
		if err := tx.Where("user_id = ?", userID).Order("created_at desc").Limit(1).Find(&last).Error; err != nil {
			return err
		}
		if len(last) == 1 {
			if elapsed := now.Sub(last[0].CreatedAt); elapsed < l.window {
				decision = Decision{RetryAfter: l.window - elapsed} // Window still open
				return nil
			}
		}

		q := domain.Question{ID: uuid.NewString(), UserID: userID, Content: content, CreatedAt: now}
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		decision = Decision{Allowed: true, Question: &q} // Slot consumed
		return nil
	})
	if errors.Is(err, domain.ErrUnknownUser) {
		return Decision{}, err
	}
	if err != nil {
		return Decision{}, domain.StoreFailure("rate limit", err)
	}
	if !decision.Allowed {
		l.log.WithFields(logrus.Fields{
			"user_id":     userID,
			"retry_after": decision.RetryAfter.Round(time.Second).String(),
		}).Info("Question rate limited")
	}
	return decision, nil
}

// acquire takes the per-user redis lock, waiting up to lockWait while another
// instance holds it. On timeout or redis failure it returns a no-op release
// and the database row lock alone serializes the check.
func (l *Limiter) acquire(ctx context.Context, userID string) func() {
	key := "lock:ask:user:" + userID
	deadline := time.Now().Add(l.lockWait)
	for {
		release, err := utils.AcquireLock(ctx, l.rdb, key, lockTTL)
		if err == nil {
			return release
		}
		fields := logrus.Fields{"user_id": userID, "error": err.Error()}
		if !errors.Is(err, utils.ErrLockHeld) {
			l.log.WithFields(fields).Warn("Rate limit lock unavailable, relying on database lock")
			return func() {}
		}
		if !time.Now().Before(deadline) {
			l.log.WithFields(fields).Warn("Rate limit lock still held, relying on database lock")
			return func() {}
		}
		select {
		case <-ctx.Done():
			return func() {} // The transaction will fail on ctx
		case <-time.After(lockPoll):
		}
	}
}

// NextAllowed returns when the user may ask again given their last question
// time, or the zero time when they may ask now.
func (l *Limiter) NextAllowed(last *domain.Question) time.Time {
	if last == nil {
		return time.Time{} // Never asked
	}
	next := last.CreatedAt.Add(l.window)
	if !next.After(l.clock.Now()) {
		return time.Time{} // Window already passed
	}
	return next.UTC()
}
