package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrDateRequired indicates that the request did not carry a disclosure date
	ErrDateRequired = errors.New("date is required")

	// ErrInvalidDate indicates that the disclosure date is not in YYYYMMDD form
	ErrInvalidDate = errors.New("invalid date")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is lets errors.Is match a date ValidationError against ErrInvalidDate.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDate && e.Field == "date"
}
