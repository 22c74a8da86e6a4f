package service

import (
	"errors"

	"habit-tracker/internal/repository"
)

// ErrNotFound is returned when a tracker or category does not exist for the user.
var ErrNotFound = repository.ErrNotFound

// ErrFutureDate rejects completions on days after today.
var ErrFutureDate = errors.New("date is in the future")

// ValidationError is input rejected before reaching a store. Message is
// meant for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
