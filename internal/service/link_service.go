package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/authz"
	"shorturl-api/internal/cache"
	"shorturl-api/internal/clock"
	"shorturl-api/internal/entities"
	"shorturl-api/internal/repository"
	"shorturl-api/internal/shortener"
)

const (
	codeTakenTTL     = time.Hour
	codeRetryBackoff = time.Millisecond
)

// LinkService defines the link business logic
type LinkService interface {
	CreateLink(ctx context.Context, originalURL string, expiresAt *time.Time, ownerID *string) (*entities.Link, error)
	Resolve(ctx context.Context, code string) (string, error)
	Lookup(ctx context.Context, code string) (*entities.Link, error)
	GetLink(ctx context.Context, caller authz.Identity, linkID string) (*entities.Link, error)
	UpdateLink(ctx context.Context, caller authz.Identity, linkID string, patch LinkPatch) (*entities.Link, error)
	SoftDeleteLink(ctx context.Context, caller authz.Identity, linkID string) error
	ListLinks(ctx context.Context, ownerID string) ([]*entities.Link, error)
}

// LinkPatch holds the fields an update may change. Nil fields are kept.
type LinkPatch struct {
	OriginalURL *string
	ExpiresAt   *time.Time
}

type LinkServiceConfig struct {
	BaseURL     string
	CodeLength  int
	MaxAttempts int
}

type linkService struct {
	repo        repository.LinkRepository
	cache       cache.Cache
	clock       clock.Clock
	generator   *shortener.Generator
	baseURL     string
	codeLength  int
	maxAttempts int
}

// NewLinkService creates a new link service. cacheClient may be nil.
func NewLinkService(repo repository.LinkRepository, cacheClient cache.Cache, clk clock.Clock, cfg LinkServiceConfig) LinkService {
	if cfg.CodeLength < 1 {
		cfg.CodeLength = shortener.DefaultLength
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return &linkService{
		repo:        repo,
		cache:       cacheClient,
		clock:       clk,
		generator:   shortener.NewGenerator(clk),
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		codeLength:  cfg.CodeLength,
		maxAttempts: cfg.MaxAttempts,
	}
}

// CreateLink generates a code and stores the link, regenerating the code
// when it collides with an active link.
func (s *linkService) CreateLink(ctx context.Context, originalURL string, expiresAt *time.Time, ownerID *string) (*entities.Link, error) {
	var (
		link    *entities.Link
		attempt int
	)

	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewConstant(codeRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		code := s.generator.Generate(originalURL, s.codeLength, ownerID)

		if s.isCodeTaken(ctx, code) {
			log.Printf("Code %s is known to be taken, regenerating (attempt %d/%d)", code, attempt, s.maxAttempts)
			return retry.RetryableError(apperrors.ErrConflict)
		}

		now := s.clock.Now()
		candidate := &entities.Link{
			ID:          uuid.NewString(),
			OriginalURL: originalURL,
			Code:        code,
			ShortURL:    s.baseURL + "/" + code,
			ExpiresAt:   utcCopy(expiresAt),
			OwnerID:     ownerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err := s.repo.Create(ctx, candidate)
		if errors.Is(err, apperrors.ErrConflict) {
			log.Printf("Code %s collided, regenerating (attempt %d/%d)", code, attempt, s.maxAttempts)
			s.markCodeTaken(ctx, code)
			return retry.RetryableError(err)
		}
		if err != nil {
			return err
		}

		link = candidate
		return nil
	})
	if errors.Is(err, apperrors.ErrConflict) {
		return nil, apperrors.New(apperrors.ErrConflict, "Could not allocate a unique short code after %d attempts", s.maxAttempts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	s.markCodeTaken(ctx, link.Code)
	return link, nil
}

// Resolve returns the destination of code and counts the access.
func (s *linkService) Resolve(ctx context.Context, code string) (string, error) {
	link, err := s.Lookup(ctx, code)
	if err != nil {
		return "", err
	}

	counted, err := s.repo.IncrementAccesses(ctx, link.ID, s.clock.Now())
	if err != nil {
		return "", linkError(err)
	}

	return counted.OriginalURL, nil
}

// Lookup returns the active, unexpired link for code without counting an
// access.
func (s *linkService) Lookup(ctx context.Context, code string) (*entities.Link, error) {
	link, err := s.repo.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, linkError(err)
	}

	if link.IsExpired(s.clock.Now()) {
		return nil, linkError(apperrors.ErrExpired)
	}

	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, caller authz.Identity, linkID string) (*entities.Link, error) {
	link, err := s.repo.FindActiveByID(ctx, linkID, ownerScope(caller))
	if err != nil {
		return nil, linkError(err)
	}
	return link, nil
}

// UpdateLink merges patch into the caller's link. Admins may update any link.
// An expired link cannot be revived.
func (s *linkService) UpdateLink(ctx context.Context, caller authz.Identity, linkID string, patch LinkPatch) (*entities.Link, error) {
	link, err := s.repo.FindActiveByID(ctx, linkID, ownerScope(caller))
	if err != nil {
		return nil, linkError(err)
	}

	now := s.clock.Now()
	if link.IsExpired(now) {
		return nil, linkError(apperrors.ErrExpired)
	}

	if patch.OriginalURL != nil {
		link.OriginalURL = *patch.OriginalURL
	}
	if patch.ExpiresAt != nil {
		link.ExpiresAt = utcCopy(patch.ExpiresAt)
	}
	link.UpdatedAt = now

	if err := s.repo.Update(ctx, link); err != nil {
		return nil, linkError(err)
	}

	return link, nil
}

// SoftDeleteLink marks the caller's link deleted. Admins may delete any link.
func (s *linkService) SoftDeleteLink(ctx context.Context, caller authz.Identity, linkID string) error {
	scope := ownerScope(caller)

	link, err := s.repo.FindActiveByID(ctx, linkID, scope)
	if err != nil {
		return linkError(err)
	}

	if err := s.repo.SoftDelete(ctx, link.ID, scope, s.clock.Now()); err != nil {
		return linkError(err)
	}

	s.forgetCode(ctx, link.Code)
	return nil
}

func (s *linkService) ListLinks(ctx context.Context, ownerID string) ([]*entities.Link, error) {
	links, err := s.repo.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

func codeKey(code string) string {
	return "code:taken:" + code
}

func (s *linkService) isCodeTaken(ctx context.Context, code string) bool {
	if s.cache == nil {
		return false
	}
	taken, err := s.cache.Exists(ctx, codeKey(code))
	if err != nil {
		log.Printf("Warning: code hint lookup failed: %v", err)
		return false
	}
	return taken
}

func (s *linkService) markCodeTaken(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, codeKey(code), "taken", codeTakenTTL); err != nil {
		log.Printf("Warning: failed to cache code hint: %v", err)
	}
}

func (s *linkService) forgetCode(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, codeKey(code)); err != nil {
		log.Printf("Warning: failed to clear code hint: %v", err)
	}
}

// ownerScope limits lookups to the caller's own links unless the caller is
// an admin.
func ownerScope(caller authz.Identity) *string {
	if caller.IsAdmin() {
		return nil
	}
	id := caller.UserID
	return &id
}

func linkError(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.New(apperrors.ErrNotFound, "URL not found")
	case errors.Is(err, apperrors.ErrExpired):
		return apperrors.New(apperrors.ErrExpired, "The shortened URL has expired")
	default:
		return err
	}
}

func utcCopy(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
