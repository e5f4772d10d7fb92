package store

import (
	"context"
	"errors"
	"fmt"

	"aura_oracle/internal/domain"
	"aura_oracle/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	entryKey    = []clause.Column{{Name: "user_id"}, {Name: "entry_date"}}                   // Unique aura key
	entryFields = []string{"aura_color", "emotion", "keywords", "affirmation", "created_at"} // Replaced on overwrite
	drawKey     = []clause.Column{{Name: "user_id"}, {Name: "kind"}, {Name: "draw_date"}}    // Unique draw key
	drawFields  = []string{"name", "keywords", "meaning", "affirmation", "created_at"}       // Replaced on overwrite
)

// onConflict overwrites fields of the existing row, or leaves it untouched
func onConflict(key []clause.Column, fields []string, overwrite bool) clause.OnConflict {
	if overwrite {
		return clause.OnConflict{Columns: key, DoUpdates: clause.AssignmentColumns(fields)} // Last write wins
	}
	return clause.OnConflict{Columns: key, DoNothing: true} // First write wins
}

// TodayEntry returns the aura entry for (userID, day) or nil when none exists.
func (s *Store) TodayEntry(ctx context.Context, userID, day string) (*domain.DailyEntry, error) {
	var e domain.DailyEntry
	err := s.db.WithContext(ctx).Where("user_id = ? AND entry_date = ?", userID, day).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Nothing stored today
	}
	if err != nil {
		return nil, domain.StoreFailure("get aura entry", err)
	}
	return &e, nil
}

// UpsertEntry writes the aura entry for (e.UserID, e.EntryDate), replacing
// every content field and created_at of an existing row. The returned row
// keeps the ID of the first write that day.
func (s *Store) UpsertEntry(ctx context.Context, e domain.DailyEntry) (*domain.DailyEntry, error) {
	out, _, err := s.writeEntry(ctx, e, true)
	return out, err
}

// CreateEntryIfAbsent stores e only when (e.UserID, e.EntryDate) has no row
// yet and returns whichever row holds the key, with true when it is e.
func (s *Store) CreateEntryIfAbsent(ctx context.Context, e domain.DailyEntry) (*domain.DailyEntry, bool, error) {
	return s.writeEntry(ctx, e, false)
}

func (s *Store) writeEntry(ctx context.Context, e domain.DailyEntry, overwrite bool) (*domain.DailyEntry, bool, error) {
	e.ID = uuid.NewString() // Kept only if this write creates the row
	e.CreatedAt = s.now()
	var out domain.DailyEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(onConflict(entryKey, entryFields, overwrite)).Create(&e).Error; err != nil {
			return err
		}
		// Re-read so the caller sees the row that holds the key
		return tx.Where("user_id = ? AND entry_date = ?", e.UserID, e.EntryDate).First(&out).Error
	})
	if err != nil {
		return nil, false, domain.StoreFailure("write aura entry", err)
	}
	created := out.ID == e.ID
	if !overwrite && !created {
		return &out, false, nil // Another request stored today's entry first
	}
	s.invalidateHistory(ctx, domain.KindAura, e.UserID)
	s.log.WithFields(logrus.Fields{
		"user_id":   out.UserID,
		"date":      out.EntryDate,
		"id":        out.ID,
		"overwrite": overwrite,
	}).Info("Aura entry stored")
	return &out, created, nil
}

// InsertEntry inserts without conflict handling. A second row for the same
// (user, day) fails with ErrDuplicateArtifact.
func (s *Store) InsertEntry(ctx context.Context, e domain.DailyEntry) (*domain.DailyEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("aura %s/%s: %w", e.UserID, e.EntryDate, domain.ErrDuplicateArtifact)
		}
		return nil, domain.StoreFailure("insert aura entry", err)
	}
	s.invalidateHistory(ctx, domain.KindAura, e.UserID)
	return &e, nil
}

// EntryHistory returns the user's latest limit aura entries, newest day first.
func (s *Store) EntryHistory(ctx context.Context, userID string, limit int) ([]domain.DailyEntry, error) {
	key := historyKey(domain.KindAura, userID, limit) // One cache entry per limit
	var rows []domain.DailyEntry
	if found, err := utils.GetCache(ctx, s.rdb, key, &rows); err == nil && found {
		return rows, nil // Served from cache
	}
	rows = []domain.DailyEntry{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("entry_date desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, domain.StoreFailure("aura history", err)
	}
	_ = utils.SetCache(ctx, s.rdb, key, rows, s.cacheTTL) // Best effort
	return rows, nil
}

// TodayDraw returns the draw of kind for (userID, day) or nil when none exists.
func (s *Store) TodayDraw(ctx context.Context, userID string, kind domain.Kind, day string) (*domain.DailyDraw, error) {
	var d domain.DailyDraw
	err := s.db.WithContext(ctx).Where("user_id = ? AND kind = ? AND draw_date = ?", userID, kind, day).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Nothing drawn today
	}
	if err != nil {
		return nil, domain.StoreFailure("get draw", err)
	}
	return &d, nil
}

// UpsertDraw writes the draw for (d.UserID, d.Kind, d.DrawDate), replacing
// every content field and created_at of an existing row.
func (s *Store) UpsertDraw(ctx context.Context, d domain.DailyDraw) (*domain.DailyDraw, error) {
	out, _, err := s.writeDraw(ctx, d, true)
	return out, err
}

// CreateDrawIfAbsent stores d only when (d.UserID, d.Kind, d.DrawDate) has no
// row yet and returns whichever row holds the key, with true when it is d.
func (s *Store) CreateDrawIfAbsent(ctx context.Context, d domain.DailyDraw) (*domain.DailyDraw, bool, error) {
	return s.writeDraw(ctx, d, false)
}

func (s *Store) writeDraw(ctx context.Context, d domain.DailyDraw, overwrite bool) (*domain.DailyDraw, bool, error) {
	d.ID = uuid.NewString() // Kept only if this write creates the row
	d.CreatedAt = s.now()
	var out domain.DailyDraw
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(onConflict(drawKey, drawFields, overwrite)).Create(&d).Error; err != nil {
			return err
		}
		// Re-read so the caller sees the row that holds the key
		return tx.Where("user_id = ? AND kind = ? AND draw_date = ?", d.UserID, d.Kind, d.DrawDate).First(&out).Error
	})
	if err != nil {
		return nil, false, domain.StoreFailure("write draw", err)
	}
	created := out.ID == d.ID
	if !overwrite && !created {
		return &out, false, nil // Another request stored today's draw first
	}
	s.invalidateHistory(ctx, d.Kind, d.UserID)
	s.log.WithFields(logrus.Fields{
		"user_id":   out.UserID,
		"kind":      string(out.Kind),
		"date":      out.DrawDate,
		"name":      out.Name,
		"overwrite": overwrite,
	}).Info("Daily draw stored")
	return &out, created, nil
}

// InsertDraw inserts without conflict handling. A second row for the same
// (user, kind, day) fails with ErrDuplicateArtifact.
func (s *Store) InsertDraw(ctx context.Context, d domain.DailyDraw) (*domain.DailyDraw, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("%s %s/%s: %w", d.Kind, d.UserID, d.DrawDate, domain.ErrDuplicateArtifact)
		}
		return nil, domain.StoreFailure("insert draw", err)
	}
	s.invalidateHistory(ctx, d.Kind, d.UserID)
	return &d, nil
}

// DrawHistory returns the user's latest limit draws of kind, newest day first.
func (s *Store) DrawHistory(ctx context.Context, userID string, kind domain.Kind, limit int) ([]domain.DailyDraw, error) {
	key := historyKey(kind, userID, limit) // One cache entry per kind and limit
	var rows []domain.DailyDraw
	if found, err := utils.GetCache(ctx, s.rdb, key, &rows); err == nil && found {
		return rows, nil // Served from cache
	}
	rows = []domain.DailyDraw{}
	if err := s.db.WithContext(ctx).Where("user_id = ? AND kind = ?", userID, kind).
		Order("draw_date desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, domain.StoreFailure("draw history", err)
	}
	_ = utils.SetCache(ctx, s.rdb, key, rows, s.cacheTTL) // Best effort
	return rows, nil
}

func historyPrefix(kind domain.Kind, userID string) string {
	return "history:" + string(kind) + ":user:" + userID + ":"
}

func historyKey(kind domain.Kind, userID string, limit int) string {
	return fmt.Sprintf("%slimit:%d", historyPrefix(kind, userID), limit)
}

// invalidateHistory drops every cached history list of kind for the user
func (s *Store) invalidateHistory(ctx context.Context, kind domain.Kind, userID string) {
	if err := utils.DeletePrefix(ctx, s.rdb, historyPrefix(kind, userID)); err != nil {
		s.log.WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    string(kind),
			"error":   err.Error(),
		}).Warn("History cache invalidation failed")
	}
}
