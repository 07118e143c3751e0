package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/authz"
	"shorturl-api/internal/clock"
	"shorturl-api/internal/entities"
	"shorturl-api/internal/repository"
)

const emailTakenMessage = "There is already a registered user with the given email"

// UserService defines user account management
type UserService interface {
	Create(ctx context.Context, email, password, role string) (*entities.User, error)
	List(ctx context.Context) ([]*entities.User, error)
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Update(ctx context.Context, caller authz.Identity, id string, patch UserPatch) (*entities.User, error)
	SoftDelete(ctx context.Context, id string) error
	EnsureAdmin(ctx context.Context, email, password string) error
}

// UserPatch holds the fields an update may change. Nil fields are kept.
type UserPatch struct {
	Email    *string
	Password *string
	Role     *string
}

type userService struct {
	repo  repository.UserRepository
	clock clock.Clock
	cost  int
}

// NewUserService creates a new user service
func NewUserService(repo repository.UserRepository, clk clock.Clock) UserService {
	return &userService{
		repo:  repo,
		clock: clk,
		cost:  bcrypt.DefaultCost,
	}
}

// Create registers a new account. An email already used by an active
// account is rejected.
func (s *userService) Create(ctx context.Context, email, password, role string) (*entities.User, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = entities.RoleUser
	}
	if !entities.ValidRole(role) {
		return nil, apperrors.New(apperrors.ErrBadRequest, "Role must be either ADMIN or USER")
	}

	_, err := s.repo.FindActiveByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.New(apperrors.ErrBadRequest, emailTakenMessage)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &entities.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.New(apperrors.ErrBadRequest, emailTakenMessage)
		}
		return nil, err
	}

	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*entities.User, error) {
	return s.repo.ListActive(ctx)
}

func (s *userService) GetByID(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, userError(err, "id")
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, err := s.repo.FindActiveByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, userError(err, "email")
	}
	return user, nil
}

// Update applies patch to the user. Only admins may change roles.
func (s *userService) Update(ctx context.Context, caller authz.Identity, id string, patch UserPatch) (*entities.User, error) {
	user, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, userError(err, "id")
	}

	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if email != user.Email {
			existing, err := s.repo.FindActiveByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, apperrors.New(apperrors.ErrBadRequest, emailTakenMessage)
			}
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	if patch.Role != nil && *patch.Role != user.Role {
		if !caller.IsAdmin() {
			return nil, apperrors.New(apperrors.ErrForbidden, "Only an admin can change roles.")
		}
		if !entities.ValidRole(*patch.Role) {
			return nil, apperrors.New(apperrors.ErrBadRequest, "Role must be either ADMIN or USER")
		}
		user.Role = *patch.Role
	}

	if patch.Password != nil {
		hash, err := s.hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.New(apperrors.ErrBadRequest, emailTakenMessage)
		}
		return nil, userError(err, "id")
	}

	return user, nil
}

// SoftDelete deactivates the account. Links it created stay active.
func (s *userService) SoftDelete(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id, s.clock.Now()); err != nil {
		return userError(err, "id")
	}
	return nil
}

// EnsureAdmin creates an admin account for email unless one is active.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.repo.FindActiveByEmail(ctx, normalizeEmail(email))
	if err == nil {
		if existing.Role != entities.RoleAdmin {
			log.Printf("Warning: bootstrap admin %s exists with role %s", existing.Email, existing.Role)
		}
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	if _, err := s.Create(ctx, email, password, entities.RoleAdmin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Created bootstrap admin %s", normalizeEmail(email))
	return nil
}

func (s *userService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.New(apperrors.ErrBadRequest, "Password must be at most 72 bytes long")
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userError(err error, by string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.New(apperrors.ErrNotFound, "There is no registered user with the given %s", by)
	}
	return err
}
