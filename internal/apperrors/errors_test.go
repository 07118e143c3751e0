package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewMatchesKind(t *testing.T) {
	err := New(ErrNotFound, "There is no registered user with the given id")
	wrapped := fmt.Errorf("lookup: %w", err)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to match ErrNotFound")
	}
	if errors.Is(wrapped, ErrConflict) {
		t.Fatalf("did not expect match with ErrConflict")
	}
	if got := Message(wrapped, "fallback"); got != "There is no registered user with the given id" {
		t.Errorf("Message() = %q", got)
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(ErrExpired, "Short URL has expired"); got != "Short URL has expired" {
		t.Errorf("Message() = %q", got)
	}
}
