package domain

import (
	"errors"
	"fmt"
)

var (
	// Error kinds surfaced by use cases. Infra layers wrap these with %w.
	ErrNotFound      = errors.New("entity not found")
	ErrWrite         = errors.New("write failed")
	ErrAuth          = errors.New("authentication failed")
	ErrAuthorization = errors.New("not authorized")
	ErrGeneration    = errors.New("workout plan generation failed")
	ErrValidation    = errors.New("validation failed")

	ErrInvalidTransition  = errors.New("invalid subscription status transition")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrBusy               = errors.New("another request is already in progress")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)

// FieldError reports which input field failed validation. It unwraps to ErrValidation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// Invalid builds a FieldError.
func Invalid(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
