package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/authz"
	"shorturl-api/internal/clock"
	"shorturl-api/internal/entities"
	"shorturl-api/internal/repository/mocks"
)

func newMockedUserService(t *testing.T) (*userService, *mocks.MockUserRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)

	svc := NewUserService(repo, clock.NewFake(t0)).(*userService)
	svc.cost = bcrypt.MinCost
	return svc, repo
}

func TestUserCreate_NormalizesAndHashes(t *testing.T) {
	svc, repo := newMockedUserService(t)

	repo.EXPECT().FindActiveByEmail(gomock.Any(), "alice@example.com").Return(nil, apperrors.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	user, err := svc.Create(context.Background(), "  Alice@Example.COM ", "password123", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q", user.Email)
	}
	if user.Role != entities.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, entities.RoleUser)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
	if !user.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %v, want %v", user.CreatedAt, t0)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	svc, repo := newMockedUserService(t)

	repo.EXPECT().FindActiveByEmail(gomock.Any(), "alice@example.com").Return(&entities.User{ID: "u1"}, nil)

	_, err := svc.Create(context.Background(), "alice@example.com", "password123", entities.RoleUser)
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("Create() error = %v, want ErrBadRequest", err)
	}
	if got := apperrors.Message(err, ""); got != emailTakenMessage {
		t.Errorf("message = %q", got)
	}
}

func TestUserCreate_DuplicateEmailRace(t *testing.T) {
	svc, repo := newMockedUserService(t)

	repo.EXPECT().FindActiveByEmail(gomock.Any(), gomock.Any()).Return(nil, apperrors.ErrNotFound)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.ErrConflict)

	_, err := svc.Create(context.Background(), "alice@example.com", "password123", entities.RoleUser)
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("Create() error = %v, want ErrBadRequest", err)
	}
}

func TestUserCreate_InvalidRole(t *testing.T) {
	svc, _ := newMockedUserService(t)

	_, err := svc.Create(context.Background(), "alice@example.com", "password123", "ROOT")
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("Create() error = %v, want ErrBadRequest", err)
	}
}

func TestUserCreate_PasswordTooLong(t *testing.T) {
	svc, repo := newMockedUserService(t)

	repo.EXPECT().FindActiveByEmail(gomock.Any(), gomock.Any()).Return(nil, apperrors.ErrNotFound)

	_, err := svc.Create(context.Background(), "alice@example.com", strings.Repeat("x", 73), entities.RoleUser)
	if !errors.Is(err, apperrors.ErrBadRequest) {
		t.Fatalf("Create() error = %v, want ErrBadRequest", err)
	}
}

func TestUserGet_NotFoundMessages(t *testing.T) {
	svc, repo := newMockedUserService(t)

	repo.EXPECT().FindActiveByID(gomock.Any(), "u1").Return(nil, apperrors.ErrNotFound)
	repo.EXPECT().FindActiveByEmail(gomock.Any(), "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetByID(context.Background(), "u1")
	if got := apperrors.Message(err, ""); got != "There is no registered user with the given id" {
		t.Errorf("GetByID() message = %q", got)
	}

	_, err = svc.GetByEmail(context.Background(), "Nobody@example.com")
	if got := apperrors.Message(err, ""); got != "There is no registered user with the given email" {
		t.Errorf("GetByEmail() message = %q", got)
	}
}

func TestUserUpdate(t *testing.T) {
	admin := authz.Identity{UserID: "a1", Role: entities.RoleAdmin}
	self := authz.Identity{UserID: "u1", Role: entities.RoleUser}
	promote := entities.RoleAdmin

	t.Run("non-admin cannot change role", func(t *testing.T) {
		svc, repo := newMockedUserService(t)
		repo.EXPECT().FindActiveByID(gomock.Any(), "u1").Return(&entities.User{ID: "u1", Role: entities.RoleUser}, nil)

		_, err := svc.Update(context.Background(), self, "u1", UserPatch{Role: &promote})
		if !errors.Is(err, apperrors.ErrForbidden) {
			t.Fatalf("Update() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("admin changes role", func(t *testing.T) {
		svc, repo := newMockedUserService(t)
		repo.EXPECT().FindActiveByID(gomock.Any(), "u1").Return(&entities.User{ID: "u1", Role: entities.RoleUser}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		user, err := svc.Update(context.Background(), admin, "u1", UserPatch{Role: &promote})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if user.Role != entities.RoleAdmin {
			t.Errorf("Role = %q, want %q", user.Role, entities.RoleAdmin)
		}
	})

	t.Run("email taken by another user", func(t *testing.T) {
		svc, repo := newMockedUserService(t)
		email := "bob@example.com"
		repo.EXPECT().FindActiveByID(gomock.Any(), "u1").Return(&entities.User{ID: "u1", Email: "alice@example.com"}, nil)
		repo.EXPECT().FindActiveByEmail(gomock.Any(), email).Return(&entities.User{ID: "u2", Email: email}, nil)

		_, err := svc.Update(context.Background(), self, "u1", UserPatch{Email: &email})
		if !errors.Is(err, apperrors.ErrBadRequest) {
			t.Fatalf("Update() error = %v, want ErrBadRequest", err)
		}
	})

	t.Run("password is rehashed", func(t *testing.T) {
		svc, repo := newMockedUserService(t)
		password := "new-password"
		repo.EXPECT().FindActiveByID(gomock.Any(), "u1").Return(&entities.User{ID: "u1", PasswordHash: "old"}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		user, err := svc.Update(context.Background(), self, "u1", UserPatch{Password: &password})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			t.Errorf("password hash not updated: %v", err)
		}
	})
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("creates missing admin", func(t *testing.T) {
		svc, repo := newMockedUserService(t)
		repo.EXPECT().FindActiveByEmail(gomock.Any(), "admin@example.com").Return(nil, apperrors.ErrNotFound).Times(2)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *entities.User) error {
			if u.Role != entities.RoleAdmin {
				t.Errorf("Role = %q, want %q", u.Role, entities.RoleAdmin)
			}
			return nil
		})

		if err := svc.EnsureAdmin(context.Background(), "Admin@example.com", "admin-password"); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}
	})

	t.Run("existing admin is left alone", func(t *testing.T) {
		svc, repo := newMockedUserService(t)
		repo.EXPECT().FindActiveByEmail(gomock.Any(), "admin@example.com").
			Return(&entities.User{ID: "a1", Email: "admin@example.com", Role: entities.RoleAdmin}, nil)

		if err := svc.EnsureAdmin(context.Background(), "admin@example.com", "admin-password"); err != nil {
			t.Fatalf("EnsureAdmin() error = %v", err)
		}
	})
}
