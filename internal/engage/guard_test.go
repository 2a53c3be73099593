package engage

import (
	"errors"
	"testing"
	"time"
)

func TestGuardIndependentIdentities(t *testing.T) {
	g := newGuard(time.Hour)

	if err := g.acquire("like", "c1", false); err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	// A different id, and a different kind on the same id, are free.
	if err := g.acquire("like", "c2", false); err != nil {
		t.Fatalf("acquire on other id failed: %v", err)
	}
	if err := g.acquire("rating", "c1", false); err != nil {
		t.Fatalf("acquire on other kind failed: %v", err)
	}

	err := g.acquire("like", "c1", false)
	if !errors.Is(err, ErrRequestInFlight) {
		t.Fatalf("expected ErrRequestInFlight on held identity, got %v", err)
	}
}

func TestGuardReleaseAllowsReacquire(t *testing.T) {
	g := newGuard(0)

	if err := g.acquire("like", "c1", false); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	g.release("like", "c1")
	if err := g.acquire("like", "c1", false); err != nil {
		t.Fatalf("reacquire after release failed: %v", err)
	}
}

func TestGuardDebounceOnlyAppliesToDebouncedMutations(t *testing.T) {
	g := newGuard(time.Hour)

	if err := g.acquire("rating", "c1", false); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	g.release("rating", "c1")

	// Non-debounced mutations ignore the window entirely.
	if err := g.acquire("rating", "c1", false); err != nil {
		t.Fatalf("expected non-debounced reacquire to pass, got %v", err)
	}
	g.release("rating", "c1")

	if err := g.acquire("like", "c1", true); err != nil {
		t.Fatalf("debounced acquire failed: %v", err)
	}
	g.release("like", "c1")
	err := g.acquire("like", "c1", true)
	if !errors.Is(err, ErrDebounced) {
		t.Fatalf("expected ErrDebounced inside window, got %v", err)
	}
}

func TestGuardDebounceWindowExpires(t *testing.T) {
	g := newGuard(50 * time.Millisecond)
	current := time.Now()
	g.now = func() time.Time { return current }

	if err := g.acquire("like", "c1", true); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	g.release("like", "c1")

	if err := g.acquire("like", "c1", true); !errors.Is(err, ErrDebounced) {
		t.Fatalf("expected ErrDebounced, got %v", err)
	}

	current = current.Add(51 * time.Millisecond)
	if err := g.acquire("like", "c1", true); err != nil {
		t.Fatalf("expected acquire after window, got %v", err)
	}
}
