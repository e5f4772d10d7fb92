package domain

import (
	"errors"
	"fmt"
	"time"
)

// Machine-readable reason codes returned to clients
const (
	CodeEmptyQuestion   = "empty_question"
	CodeQuestionTooLong = "question_too_long"
	CodeUnknownKind     = "unknown_kind"
	CodeInvalidEmail    = "invalid_email"
	CodeEmptyCardName   = "empty_card_name"
	CodeCardNameTooLong = "card_name_too_long"
	CodeRateLimited     = "rate_limited"
	CodeInvalidRequest  = "invalid_request"
)

var (
	// ErrProviderUnavailable is absorbed by the oracle gateway and never reaches handlers
	ErrProviderUnavailable = errors.New("content provider unavailable")
	// ErrDuplicateArtifact means a daily artifact was inserted without conflict handling
	ErrDuplicateArtifact = errors.New("duplicate daily artifact")
	// ErrStoreUnavailable is fatal for the current request
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnknownUser means a session names a user that no longer exists
	ErrUnknownUser = errors.New("unknown user")
)

// ValidationError rejects input before any store or provider call
type ValidationError struct {
	Code    string // Reason code
	Message string // Human-readable detail
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError
func NewValidationError(code, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

// RateLimitedError is returned when a user asks again inside the question window
type RateLimitedError struct {
	RetryAfter time.Duration // Time left in the window
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// Code returns the reason code
func (e *RateLimitedError) Code() string { return CodeRateLimited }

// StoreError wraps a database failure with the operation that hit it
type StoreError struct {
	Op  string // Store operation name
	Err error  // Underlying driver error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }

// Unwrap exposes the driver error
func (e *StoreError) Unwrap() error { return e.Err }

// Is makes every StoreError match ErrStoreUnavailable
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// StoreFailure wraps err as a StoreError, passing nil and already-typed errors through
func StoreFailure(op string, err error) error {
	if err == nil || errors.Is(err, ErrDuplicateArtifact) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
