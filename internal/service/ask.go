package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"aura_oracle/internal/domain"
	"aura_oracle/internal/oracle"

	"github.com/sirupsen/logrus"
)

// AskResult is a stored question with its answer.
type AskResult struct {
	Question    *domain.Question `json:"question"`
	Answer      *domain.Answer   `json:"answer"`
	PrimaryCard string           `json:"primary_card,omitempty"`
	Image       string           `json:"image,omitempty"`
	Offline     bool             `json:"offline"`
}

// Ask validates question, consumes the user's question window and stores
// the generated answer. A denied window returns *domain.RateLimitedError.
// When the answer cannot be stored the question row stays and the window
// remains consumed.
func (r *Readings) Ask(ctx context.Context, userID, question string) (*AskResult, error) {
	question = strings.TrimSpace(question) // Ignore surrounding whitespace
	if question == "" {
		return nil, domain.NewValidationError(domain.CodeEmptyQuestion, "question is empty") // Nothing to ask
	}
	if utf8.RuneCountInString(question) > MaxQuestionRunes {
		return nil, domain.NewValidationError(domain.CodeQuestionTooLong, "question is too long")
	}

	decision, err := r.limiter.TryConsume(ctx, userID, question) // Stores the question when allowed
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &domain.RateLimitedError{RetryAfter: decision.RetryAfter} // Still inside the window
	}

	content, err := r.gateway.Generate(ctx, oracle.Request{Question: question}) // Falls back offline, never fails on the provider
	if err != nil {
		return nil, err
	}
	a := content.Answer
	stored, err := r.store.InsertAnswer(ctx, domain.Answer{
		QuestionID:  decision.Question.ID,
		Body:        a.Body,
		Affirmation: a.Affirmation,
		TagsCSV:     a.Tags,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"user_id":     userID,
			"question_id": decision.Question.ID,
			"error":       err.Error(),
		}).Error("Failed to store answer, question kept")
		return nil, err
	}

	res := &AskResult{Question: decision.Question, Answer: stored, Offline: a.Offline} // Response payload
	if a.PrimaryCard != "" {
		if it, ok := r.catalogs.Get(domain.KindTarot).Lookup(a.PrimaryCard); ok { // Catalog spelling and image
			res.PrimaryCard, res.Image = it.Name, it.Asset
		} else {
			res.PrimaryCard = a.PrimaryCard // Unknown card, keep the provider's name
		}
	}
	r.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"question_id": decision.Question.ID,
		"offline":     a.Offline,
	}).Info("Question answered")
	return res, nil
}

// QuestionsView is a user's recent questions and when they may ask again.
type QuestionsView struct {
	Items         []domain.QuestionWithAnswer `json:"items"`
	LastAskedAt   *time.Time                  `json:"last_asked_at"`
	NextAllowedAt *time.Time                  `json:"next_allowed_at"`
}

// Questions lists the user's latest questions, newest first.
func (r *Readings) Questions(ctx context.Context, userID string) (*QuestionsView, error) {
	items, err := r.store.QuestionHistory(ctx, userID, QuestionHistory)
	if err != nil {
		return nil, err
	}
	last, err := r.store.LastQuestion(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &QuestionsView{Items: items} // No last question leaves both times null
	if last != nil {
		at := last.CreatedAt.UTC() // Copy before taking the address
		view.LastAskedAt = &at
		if next := r.limiter.NextAllowed(last); !next.IsZero() {
			view.NextAllowedAt = &next
		}
	}
	return view, nil
}
