package repository

//go:generate mockgen -source=user_repository.go -destination=mocks/user_repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/database"
	"shorturl-api/internal/entities"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	FindActiveByEmail(ctx context.Context, email string) (*entities.User, error)
	FindActiveByID(ctx context.Context, id string) (*entities.User, error)
	ListActive(ctx context.Context) ([]*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	SoftDelete(ctx context.Context, id string, now time.Time) error
}

const userColumns = `id, email, password_hash, role, created_at, updated_at`

type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user. A duplicate active email is reported as
// apperrors.ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (id, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt.UTC(),
		user.UpdatedAt.UTC(),
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("email %q already registered: %w", user.Email, apperrors.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindActiveByEmail finds an active user by email
func (r *userRepository) FindActiveByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`)
	return r.findOne(ctx, query, email)
}

// FindActiveByID finds an active user by ID (UUID)
func (r *userRepository) FindActiveByID(ctx context.Context, id string) (*entities.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`)
	return r.findOne(ctx, query, id)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg string) (*entities.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListActive returns every active user ordered by creation time
func (r *userRepository) ListActive(ctx context.Context) ([]*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// Update saves email, password hash and role of an active user
func (r *userRepository) Update(ctx context.Context, user *entities.User) error {
	query := r.db.Rebind(`
		UPDATE users
		SET email = ?, password_hash = ?, role = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`)

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.UpdatedAt.UTC(),
		user.ID,
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("email %q already registered: %w", user.Email, apperrors.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return expectRow(result, fmt.Errorf("user: %w", apperrors.ErrNotFound))
}

// SoftDelete marks an active user as deleted. Their links are kept.
func (r *userRepository) SoftDelete(ctx context.Context, id string, now time.Time) error {
	query := r.db.Rebind(`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`)

	result, err := r.db.ExecContext(ctx, query, now.UTC(), now.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return expectRow(result, fmt.Errorf("user: %w", apperrors.ErrNotFound))
}

func scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}
