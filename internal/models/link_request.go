package models

import (
	"errors"
	"time"
)

// ErrExpiryInPast is returned when a requested expiry is before now.
var ErrExpiryInPast = errors.New("expiration time cannot be in the past")

// CreateLinkRequest represents the request body for creating a short link
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url" binding:"required,url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // Optional expiration date
}

// Validate checks the fields binding tags cannot express.
func (r *CreateLinkRequest) Validate(now time.Time) error {
	return validateExpiry(r.ExpiresAt, now)
}

// UpdateLinkRequest holds optional changes to a link
type UpdateLinkRequest struct {
	OriginalURL *string    `json:"original_url,omitempty" binding:"omitempty,url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

func (r *UpdateLinkRequest) Validate(now time.Time) error {
	return validateExpiry(r.ExpiresAt, now)
}

func validateExpiry(expiresAt *time.Time, now time.Time) error {
	if expiresAt != nil && expiresAt.Before(now) {
		return ErrExpiryInPast
	}
	return nil
}
