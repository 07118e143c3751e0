package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"shorturl-api/internal/apperrors"
	"shorturl-api/internal/authz"
	"shorturl-api/internal/clock"
	"shorturl-api/internal/database"
	"shorturl-api/internal/entities"
	"shorturl-api/internal/repository"
)

type storeFixture struct {
	links LinkService
	users *userService
	clock *clock.Fake
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()

	db, err := database.NewConnection(":memory:")
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	clk := clock.NewFake(t0)
	clk.Step = time.Millisecond

	users := NewUserService(repository.NewUserRepository(db), clk).(*userService)
	users.cost = bcrypt.MinCost

	links := NewLinkService(repository.NewLinkRepository(db), nil, clk, LinkServiceConfig{
		BaseURL:     "https://sho.rt",
		CodeLength:  6,
		MaxAttempts: 5,
	})

	return &storeFixture{links: links, users: users, clock: clk}
}

func (f *storeFixture) identity(t *testing.T, email, role string) authz.Identity {
	t.Helper()

	user, err := f.users.Create(context.Background(), email, "password123", role)
	if err != nil {
		t.Fatalf("Create(%s) error = %v", email, err)
	}
	return authz.Identity{UserID: user.ID, Role: user.Role}
}

func TestStore_ShortenThenResolve(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	link, err := f.links.CreateLink(ctx, "https://example.com", nil, nil)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}
	if len(link.Code) != 6 {
		t.Errorf("Code = %q, want 6 characters", link.Code)
	}

	got, err := f.links.Resolve(ctx, link.Code)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "https://example.com" {
		t.Errorf("Resolve() = %q, want https://example.com", got)
	}

	stored, err := f.links.Lookup(ctx, link.Code)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if stored.Accesses != 1 {
		t.Errorf("Accesses = %d, want 1", stored.Accesses)
	}
}

func TestStore_ConcurrentResolvesCountEveryAccess(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	link, err := f.links.CreateLink(ctx, "https://example.com/busy", nil, nil)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	const n = 40
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := f.links.Resolve(ctx, link.Code)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	stored, err := f.links.Lookup(ctx, link.Code)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if stored.Accesses != n {
		t.Errorf("Accesses = %d, want %d", stored.Accesses, n)
	}
}

func TestStore_ExpiredLinkIsNotCounted(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	expires := t0.Add(time.Hour)
	link, err := f.links.CreateLink(ctx, "https://example.com/soon", &expires, nil)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	f.clock.Advance(2 * time.Hour)

	if _, err := f.links.Resolve(ctx, link.Code); !errors.Is(err, apperrors.ErrExpired) {
		t.Fatalf("Resolve() error = %v, want ErrExpired", err)
	}

	f.clock.Set(t0)
	stored, err := f.links.Lookup(ctx, link.Code)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if stored.Accesses != 0 {
		t.Errorf("Accesses = %d, want 0", stored.Accesses)
	}
}

func TestStore_SoftDeletedLinkIsGone(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "alice@example.com", entities.RoleUser)

	link, err := f.links.CreateLink(ctx, "https://example.com/a", nil, &alice.UserID)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	if err := f.links.SoftDeleteLink(ctx, alice, link.ID); err != nil {
		t.Fatalf("SoftDeleteLink() error = %v", err)
	}

	if _, err := f.links.Resolve(ctx, link.Code); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
	if err := f.links.SoftDeleteLink(ctx, alice, link.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second SoftDeleteLink() error = %v, want ErrNotFound", err)
	}

	links, err := f.links.ListLinks(ctx, alice.UserID)
	if err != nil {
		t.Fatalf("ListLinks() error = %v", err)
	}
	if len(links) != 0 {
		t.Errorf("ListLinks() returned %d links, want 0", len(links))
	}
}

func TestStore_OwnershipAndAdminOverride(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "alice@example.com", entities.RoleUser)
	bob := f.identity(t, "bob@example.com", entities.RoleUser)
	admin := f.identity(t, "admin@example.com", entities.RoleAdmin)

	link, err := f.links.CreateLink(ctx, "https://example.com/a", nil, &alice.UserID)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	newURL := "https://example.com/b"
	if _, err := f.links.UpdateLink(ctx, bob, link.ID, LinkPatch{OriginalURL: &newURL}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("UpdateLink() by non-owner error = %v, want ErrNotFound", err)
	}

	updated, err := f.links.UpdateLink(ctx, admin, link.ID, LinkPatch{OriginalURL: &newURL})
	if err != nil {
		t.Fatalf("UpdateLink() by admin error = %v", err)
	}
	if updated.OriginalURL != newURL || updated.Code != link.Code {
		t.Errorf("updated = %+v", updated)
	}

	if err := f.links.SoftDeleteLink(ctx, bob, link.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("SoftDeleteLink() by non-owner error = %v, want ErrNotFound", err)
	}
	if err := f.links.SoftDeleteLink(ctx, admin, link.ID); err != nil {
		t.Errorf("SoftDeleteLink() by admin error = %v", err)
	}
}

func TestStore_UpdateExpiredLink(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	alice := f.identity(t, "alice@example.com", entities.RoleUser)

	expires := t0.Add(time.Hour)
	link, err := f.links.CreateLink(ctx, "https://example.com/a", &expires, &alice.UserID)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	f.clock.Advance(2 * time.Hour)

	later := t0.Add(48 * time.Hour)
	_, err = f.links.UpdateLink(ctx, alice, link.ID, LinkPatch{ExpiresAt: &later})
	if !errors.Is(err, apperrors.ErrExpired) {
		t.Fatalf("UpdateLink() error = %v, want ErrExpired", err)
	}
}

func TestStore_CodeReusableAfterDelete(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	first, err := f.links.CreateLink(ctx, "https://example.com", nil, nil)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}

	admin := f.identity(t, "admin@example.com", entities.RoleAdmin)
	if err := f.links.SoftDeleteLink(ctx, admin, first.ID); err != nil {
		t.Fatalf("SoftDeleteLink() error = %v", err)
	}

	// Rewind so the generator produces the same code again.
	f.clock.Set(t0)
	second, err := f.links.CreateLink(ctx, "https://example.com", nil, nil)
	if err != nil {
		t.Fatalf("CreateLink() error = %v", err)
	}
	if second.Code != first.Code {
		t.Errorf("Code = %q, want reused %q", second.Code, first.Code)
	}
}
