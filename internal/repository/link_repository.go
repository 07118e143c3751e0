package repository

//go:generate mockgen -source=link_repository.go -destination=mocks/link_repository_mock.go -package=mocks

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

// LinkRepository defines the database operations on links. Every lookup
// only sees active (not soft-deleted) rows.
type LinkRepository interface {
	Create(ctx context.Context, link *entities.Link) error
	FindActiveByCode(ctx context.Context, code string) (*entities.Link, error)
	FindActiveByID(ctx context.Context, id string, ownerID *string) (*entities.Link, error)
	ListActiveByOwner(ctx context.Context, ownerID string) ([]*entities.Link, error)
	Update(ctx context.Context, link *entities.Link) error
	IncrementAccesses(ctx context.Context, id string, now time.Time) (*entities.Link, error)
	SoftDelete(ctx context.Context, id string, ownerID *string, now time.Time) error
}

const linkColumns = `id, original_url, code, short_url, accesses, expires_at, owner_id, created_at, updated_at`

type linkRepository struct {
	db *database.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *database.DB) LinkRepository {
	return &linkRepository{db: db}
}

// Create inserts a new link. A clash on the active code index is reported as
// apperrors.ErrConflict.
func (r *linkRepository) Create(ctx context.Context, link *entities.Link) error {
	query := r.db.Rebind(`
		INSERT INTO links (id, original_url, code, short_url, accesses, expires_at, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.OriginalURL,
		link.Code,
		link.ShortURL,
		link.Accesses,
		nullableTime(link.ExpiresAt),
		nullableString(link.OwnerID),
		link.CreatedAt.UTC(),
		link.UpdatedAt.UTC(),
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("code %q already in use: %w", link.Code, apperrors.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// FindActiveByCode finds the active link for code, expired or not.
func (r *linkRepository) FindActiveByCode(ctx context.Context, code string) (*entities.Link, error) {
	query := r.db.Rebind(`SELECT ` + linkColumns + ` FROM links WHERE code = ? AND deleted_at IS NULL`)

	link, err := scanLink(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("link with code %q: %w", code, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return link, nil
}

// FindActiveByID finds an active link by id, restricted to ownerID when it
// is not nil.
func (r *linkRepository) FindActiveByID(ctx context.Context, id string, ownerID *string) (*entities.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND deleted_at IS NULL`
	args := []any{id}
	if ownerID != nil {
		query += ` AND owner_id = ?`
		args = append(args, *ownerID)
	}

	link, err := scanLink(r.db.QueryRowContext(ctx, r.db.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("link %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find link: %w", err)
	}

	return link, nil
}

// ListActiveByOwner returns the owner's active links, newest first.
func (r *linkRepository) ListActiveByOwner(ctx context.Context, ownerID string) ([]*entities.Link, error) {
	query := r.db.Rebind(`
		SELECT ` + linkColumns + `
		FROM links
		WHERE owner_id = ? AND deleted_at IS NULL
		ORDER BY created_at DESC
	`)

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	defer rows.Close()

	links := []*entities.Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// Update saves the mutable fields of an active link. The access counter is
// left untouched so concurrent redirects are not overwritten.
func (r *linkRepository) Update(ctx context.Context, link *entities.Link) error {
	query := r.db.Rebind(`
		UPDATE links
		SET original_url = ?, expires_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`)

	result, err := r.db.ExecContext(ctx, query,
		link.OriginalURL,
		nullableTime(link.ExpiresAt),
		link.UpdatedAt.UTC(),
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	return expectRow(result, fmt.Errorf("link %s: %w", link.ID, apperrors.ErrNotFound))
}

// IncrementAccesses adds one access to an active, unexpired link and returns
// the row as it stands after the increment. The conditional update and the
// read share a transaction, so the returned row is the one that was counted.
func (r *linkRepository) IncrementAccesses(ctx context.Context, id string, now time.Time) (*entities.Link, error) {
	now = now.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, r.db.Rebind(`
		UPDATE links
		SET accesses = accesses + 1, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL AND (expires_at IS NULL OR expires_at >= ?)
	`), now, id, now)
	if err != nil {
		return nil, fmt.Errorf("failed to increment accesses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Deleted or expired since the caller looked it up.
		var expiresAt sql.NullTime
		err := tx.QueryRowContext(ctx, r.db.Rebind(`SELECT expires_at FROM links WHERE id = ? AND deleted_at IS NULL`), id).Scan(&expiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("link %s: %w", id, apperrors.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find link: %w", err)
		}
		return nil, fmt.Errorf("link %s: %w", id, apperrors.ErrExpired)
	}

	link, err := scanLink(tx.QueryRowContext(ctx, r.db.Rebind(`SELECT `+linkColumns+` FROM links WHERE id = ?`), id))
	if err != nil {
		return nil, fmt.Errorf("failed to read link: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit access: %w", err)
	}

	return link, nil
}

// SoftDelete marks an active link as deleted, restricted to ownerID when it
// is not nil.
func (r *linkRepository) SoftDelete(ctx context.Context, id string, ownerID *string, now time.Time) error {
	query := `UPDATE links SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	args := []any{now.UTC(), now.UTC(), id}
	if ownerID != nil {
		query += ` AND owner_id = ?`
		args = append(args, *ownerID)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	return expectRow(result, fmt.Errorf("link %s: %w", id, apperrors.ErrNotFound))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (*entities.Link, error) {
	var (
		link      entities.Link
		expiresAt sql.NullTime
		ownerID   sql.NullString
	)

	err := row.Scan(
		&link.ID,
		&link.OriginalURL,
		&link.Code,
		&link.ShortURL,
		&link.Accesses,
		&expiresAt,
		&ownerID,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		link.ExpiresAt = &t
	}
	if ownerID.Valid {
		owner := ownerID.String
		link.OwnerID = &owner
	}
	link.CreatedAt = link.CreatedAt.UTC()
	link.UpdatedAt = link.UpdatedAt.UTC()

	return &link, nil
}
