// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a required field was missing or empty at an
	// operation boundary. Raised before any backend round-trip.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated indicates a write was attempted with no identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden indicates the identity is not the owner of the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials indicates the backend rejected credentials or token.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBackendUnavailable indicates no backend is configured. Distinct from
	// a network failure.
	ErrBackendUnavailable = errors.New("backend not configured")

	// ErrNotFound indicates the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTopicLocked indicates a reply was posted to a locked topic.
	ErrTopicLocked = errors.New("topic is locked")

	// ErrUsernameCooldown indicates a username change inside the 30-day window.
	ErrUsernameCooldown = errors.New("username recently changed")
)

// Wrap attaches a display message to a sentinel so callers can match with
// errors.Is while the original backend message survives for the user.
func Wrap(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

// Wrapf is Wrap with formatting.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
