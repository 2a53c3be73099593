package engage

import (
	"sync"
	"time"
)

// identity addresses one mutable engagement record.
type identity struct {
	kind string
	id   string
}

// guard is the per-identity lock map behind every optimistic mutation:
// one request in flight per identity, plus a minimum interval between
// accepted invocations for retriggerable actions. Acquisitions are
// released on every exit path by the mutation runner.
type guard struct {
	mu       sync.Mutex
	inFlight map[identity]bool
	accepted map[identity]time.Time
	debounce time.Duration
	now      func() time.Time
}

func newGuard(debounce time.Duration) *guard {
	return &guard{
		inFlight: make(map[identity]bool),
		accepted: make(map[identity]time.Time),
		debounce: debounce,
		now:      time.Now,
	}
}

// acquire claims the identity for one mutation. It fails with
// ErrRequestInFlight if a request is outstanding, and with ErrDebounced
// if debounced is set and the minimum interval has not elapsed since the
// last accepted invocation.
func (g *guard) acquire(kind, id string, debounced bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := identity{kind: kind, id: id}
	if g.inFlight[key] {
		return ErrRequestInFlight
	}
	if debounced && g.debounce > 0 {
		if last, ok := g.accepted[key]; ok && g.now().Sub(last) < g.debounce {
			return ErrDebounced
		}
	}

	g.inFlight[key] = true
	g.accepted[key] = g.now()
	return nil
}

// release clears the in-flight claim for the identity.
func (g *guard) release(kind, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, identity{kind: kind, id: id})
}
