package entities

import "time"

// Link represents a shortened URL entity in the database
type Link struct {
	ID          string     `json:"id"` // UUID
	OriginalURL string     `json:"original_url"`
	Code        string     `json:"code"`
	ShortURL    string     `json:"short_url"`
	Accesses    int64      `json:"accesses"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"` // nil means the link never expires
	OwnerID     *string    `json:"owner_id,omitempty"`   // nil for anonymous links
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// IsExpired reports whether the link's expiry is strictly before now.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// IsOwnedBy reports whether userID created the link.
func (l *Link) IsOwnedBy(userID string) bool {
	return l.OwnerID != nil && *l.OwnerID == userID
}
