package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("workflow session not found")
	ErrInvalidRole     = errors.New("invalid role")
	ErrRoleNotAllowed  = errors.New("role is not allowed to perform this action")
	ErrStageOrder      = errors.New("workflow stage does not permit this operation")
	ErrSessionBusy     = errors.New("another submission is already in flight for this session")
)

// ValidationError reports a missing or invalid selection. It is raised before
// any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
