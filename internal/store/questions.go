package store

import (
	"context"
	"errors"

	"aura_oracle/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InsertAnswer stores the single answer to a question.
func (s *Store) InsertAnswer(ctx context.Context, a domain.Answer) (*domain.Answer, error) {
	if a.ID == "" {
		a.ID = uuid.NewString() // Assign ID if caller left it empty
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now() // Stamp with the store clock
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil { // Unique on question_id
		return nil, domain.StoreFailure("insert answer", err)
	}
	return &a, nil
}

// LastQuestion returns the user's most recent question or nil.
func (s *Store) LastQuestion(ctx context.Context, userID string) (*domain.Question, error) {
	var q domain.Question
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").First(&q).Error // Latest question for the user
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No question yet
	}
	if err != nil {
		return nil, domain.StoreFailure("last question", err)
	}
	return &q, nil
}

// QuestionHistory returns the user's latest questions with their answers,
// newest first. Questions without a stored answer carry empty answer fields.
func (s *Store) QuestionHistory(ctx context.Context, userID string, limit int) ([]domain.QuestionWithAnswer, error) {
	rows := []domain.QuestionWithAnswer{} // Non-nil so it encodes as []
	err := s.db.WithContext(ctx).
		Table("questions AS q").
		Select("q.id AS question_id, q.content AS question, " +
			"COALESCE(a.body, '') AS answer, COALESCE(a.affirmation, '') AS affirmation, " +
			"COALESCE(a.tags_csv, '') AS tags, q.created_at AS created_at").
		Joins("LEFT JOIN answers a ON a.question_id = q.id"). // Keep unanswered questions
		Where("q.user_id = ?", userID).
		Order("q.created_at desc"). // Newest first
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, domain.StoreFailure("question history", err)
	}
	return rows, nil
}
