package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"aura_oracle/internal/domain"

	"github.com/sirupsen/logrus"
)

// NormalizeEmail trims and lowercases email and checks it looks like an address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email)) // Canonical form
	if email == "" || !strings.Contains(email, "@") || utf8.RuneCountInString(email) > MaxEmailRunes {
		return "", domain.NewValidationError(domain.CodeInvalidEmail, "invalid email")
	}
	return email, nil
}

// Signup finds or creates the user owning email.
func (r *Readings) Signup(ctx context.Context, email string) (*domain.User, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, created, err := r.store.EnsureUser(ctx, email) // Idempotent per email
	if err != nil {
		return nil, err
	}
	if created { // Log only the first signup
		r.log.WithFields(logrus.Fields{"user_id": u.ID}).Info("User signed up")
	}
	return u, nil
}

// SignupCount returns how many users exist.
func (r *Readings) SignupCount(ctx context.Context) (int64, error) {
	return r.store.CountUsers(ctx)
}

// UserExists reports whether a session's user is still stored.
func (r *Readings) UserExists(ctx context.Context, userID string) (bool, error) {
	return r.store.UserExists(ctx, userID)
}

// DeleteAccount removes the user and everything they own.
func (r *Readings) DeleteAccount(ctx context.Context, userID string) error {
	if err := r.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	r.log.WithFields(logrus.Fields{"user_id": userID}).Info("User deleted")
	return nil
}
