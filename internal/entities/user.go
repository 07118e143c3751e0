package entities

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a user entity in the database
type User struct {
	ID           string     `json:"id"` // UUID
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Don't expose password hash in JSON
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
