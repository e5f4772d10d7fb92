package store

import (
	"context"
	"errors"

	"aura_oracle/internal/domain"
	"aura_oracle/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnsureUser returns the user with email, creating it on first sight.
func (s *Store) EnsureUser(ctx context.Context, email string) (*domain.User, bool, error) {
	db := s.db.WithContext(ctx) // Request-scoped handle
	var u domain.User
	err := db.Where("email = ?", email).First(&u).Error // Look up by normalized email
	if err == nil {
		return &u, false, nil // Existing user
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, domain.StoreFailure("find user", err)
	}
	u = domain.User{ID: uuid.NewString(), Email: email, CreatedAt: s.now()} // New user
	if err := db.Create(&u).Error; err != nil {
		if isDuplicate(err) {
			// lost a race with a concurrent signup for the same email
			if err := db.Where("email = ?", email).First(&u).Error; err != nil {
				return nil, false, domain.StoreFailure("find user", err)
			}
			return &u, false, nil
		}
		return nil, false, domain.StoreFailure("create user", err)
	}
	return &u, true, nil // Created
}

// UserExists reports whether id names a stored user.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil { // Count matching rows
		return false, domain.StoreFailure("user exists", err)
	}
	return n > 0, nil
}

// CountUsers returns the number of signed-up users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil { // Total signups
		return 0, domain.StoreFailure("count users", err)
	}
	return n, nil
}

// DeleteUser removes the user and every row it owns in one transaction.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&domain.Question{}).Select("id").Where("user_id = ?", id)                  // Subquery over the user's questions
		if err := tx.Where("question_id IN (?)", owned).Delete(&domain.Answer{}).Error; err != nil { // Answers first, they reference questions
			return err
		}
		for _, m := range []any{&domain.Question{}, &domain.DailyEntry{}, &domain.DailyDraw{}, &domain.TrackedCard{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error // User row last
	})
	if err != nil {
		return domain.StoreFailure("delete user", err)
	}
	for _, k := range []domain.Kind{domain.KindAura, domain.KindTarot, domain.KindRune} {
		s.invalidateHistory(ctx, k, id) // Drop cached history per kind
	}
	_ = utils.DeletePrefix(ctx, s.rdb, trackerPrefix(id)) // Drop cached tracker tops
	s.log.WithField("user_id", id).Info("User deleted")
	return nil
}
