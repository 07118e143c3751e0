// Package apperrors defines the error kinds shared by the repositories,
// services and HTTP controllers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is absent, soft-deleted or not
	// owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a link exists but its expiry has passed.
	ErrExpired = errors.New("link expired")

	// ErrConflict is returned on uniqueness violations.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when the caller is neither the target nor an admin.
	ErrForbidden = errors.New("forbidden")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBadRequest         = errors.New("bad request")
)

// Error carries a user-facing message while still matching its kind with
// errors.Is.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New returns an error of the given kind with a custom message.
func New(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Message returns the user-facing message of err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallback
}
