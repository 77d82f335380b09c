package services

import (
	"errors"
	"fmt"
)

// Error taxonomy. Handlers map these onto HTTP statuses; anything not
// wrapping one of them is a persistence failure and must be reported to
// users as a generic message, never with the internal error text.
var (
	// ErrValidation marks a missing or malformed caller-supplied field.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized marks a role mismatch. It is never downgraded to
	// a not-found.
	ErrUnauthorized = errors.New("admin privileges required")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrSelfDelete is returned when an admin tries to delete their own
	// account through the member management surface.
	ErrSelfDelete = errors.New("admins cannot delete their own account")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
