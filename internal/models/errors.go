// ABOUTME: Error taxonomy shared across stores and services.
// ABOUTME: Validation errors reject before mutation; not-found is distinct.
package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a get/delete targets a missing row.
var ErrNotFound = errors.New("not found")

// ValidationError rejects malformed input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
