package errs

import (
	"errors"
)

var (
	ErrNotFound    = errors.New("book not found")
	ErrInvalidDate = errors.New("invalid date format. Use YYYY-MM-DD")
	ErrStorage     = errors.New("storage failure")
)

// ValidationError reports a rejected client input, naming the missing or
// invalid field in Message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
