package store

import (
	"context"
	"strconv"

	"aura_oracle/internal/domain"
	"aura_oracle/internal/utils"

	"github.com/google/uuid"
)

func trackerPrefix(userID string) string { return "tracker:top:user:" + userID + ":" }

func trackerKey(userID string, limit int) string {
	return trackerPrefix(userID) + "limit:" + strconv.Itoa(limit)
}

// AddCard appends a tracker entry.
func (s *Store) AddCard(ctx context.Context, userID, name, notes string) (*domain.TrackedCard, error) {
	c := domain.TrackedCard{ID: uuid.NewString(), UserID: userID, CardName: name, Notes: notes, CreatedAt: s.now()} // New row stamped with the store clock
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, domain.StoreFailure("add card", err)
	}
	_ = utils.DeletePrefix(ctx, s.rdb, trackerPrefix(userID)) // Drop cached top lists for every limit
	return &c, nil
}

// ListCards returns the user's latest limit tracker entries, newest first.
func (s *Store) ListCards(ctx context.Context, userID string, limit int) ([]domain.TrackedCard, error) {
	rows := []domain.TrackedCard{} // Non-nil so it encodes as []
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at desc"). // Newest first
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, domain.StoreFailure("list cards", err) // Wrap as store failure
	}
	return rows, nil
}

// TopCards returns the user's most logged card names, most frequent first.
func (s *Store) TopCards(ctx context.Context, userID string, limit int) ([]domain.CardCount, error) {
	var rows []domain.CardCount
	if found, err := utils.GetCache(ctx, s.rdb, trackerKey(userID, limit), &rows); err == nil && found { // Cache hit
		return rows, nil
	}
	rows = []domain.CardCount{}
	if err := s.db.WithContext(ctx).Model(&domain.TrackedCard{}).
		Select("card_name, COUNT(*) AS count"). // Count per canonical name
		Where("user_id = ?", userID).
		Group("card_name").
		Order("count desc, card_name asc"). // Ties break alphabetically
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, domain.StoreFailure("top cards", err)
	}
	_ = utils.SetCache(ctx, s.rdb, trackerKey(userID, limit), rows, s.cacheTTL) // Best effort, misses fall back to the database
	return rows, nil
}
