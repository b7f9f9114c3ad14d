// Package models defines the newsdesk domain values and their PostgreSQL
// stores.
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is wrapped by every constructor failure.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned by store lookups that match no row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a tier change is not allowed.
	ErrInvalidTransition = errors.New("invalid tier transition")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
