package loader

import (
	"context"
	"sync"
)

// FetchPage retrieves one page of an ordered collection from the server.
// Pages are numbered from 1.
type FetchPage[T any] func(ctx context.Context, page int) (items []T, total int, hasMore bool, err error)

// Loader fetches an ordered collection in pages, merging without
// duplicates and tracking has-more/total-count from the server. One load
// is in flight at a time; overlapping Refresh/LoadMore calls are no-ops.
//
// The Insert/Swap/Remove mutators exist for the optimistic mutation
// controller only; everything else should treat the collection as
// read-only between authoritative fetches.
type Loader[T any] struct {
	fetch FetchPage[T]
	id    func(T) string

	mu       sync.Mutex
	items    []T
	index    map[string]int
	page     int
	total    int
	hasMore  bool
	inFlight bool
	loaded   bool
}

// New creates a Loader over the given page fetcher. id extracts the
// stable identity used for de-duplication.
func New[T any](fetch FetchPage[T], id func(T) string) *Loader[T] {
	return &Loader[T]{
		fetch: fetch,
		id:    id,
		index: make(map[string]int),
	}
}

// EnsureLoaded performs the initial fetch exactly once per loader
// lifetime. Subsequent calls (and calls arriving while the first fetch is
// in flight) are no-ops. A failed initial fetch leaves the loader
// unloaded so the next access retries.
func (l *Loader[T]) EnsureLoaded(ctx context.Context) error {
	l.mu.Lock()
	if l.loaded || l.inFlight {
		l.mu.Unlock()
		return nil
	}
	l.inFlight = true
	l.mu.Unlock()

	items, total, hasMore, err := l.fetch(ctx, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false
	if err != nil {
		return err
	}
	l.replace(items, total, hasMore)
	l.loaded = true
	return nil
}

// Refresh fetches page 1 and replaces the collection in full.
func (l *Loader[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.inFlight {
		l.mu.Unlock()
		return nil
	}
	l.inFlight = true
	l.mu.Unlock()

	items, total, hasMore, err := l.fetch(ctx, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false
	if err != nil {
		return err
	}
	l.replace(items, total, hasMore)
	l.loaded = true
	return nil
}

// LoadMore fetches the next page and appends it, preserving server order.
// No-op when a load is in flight or the server reported no more pages.
func (l *Loader[T]) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if l.inFlight || !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	l.inFlight = true
	next := l.page + 1
	l.mu.Unlock()

	items, total, hasMore, err := l.fetch(ctx, next)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inFlight = false
	if err != nil {
		return err
	}
	for _, item := range items {
		l.mergeOne(item)
	}
	l.page = next
	l.total = total
	l.hasMore = hasMore
	return nil
}

// Merge folds extra authoritative items (e.g. a comment's replies) into
// the collection, later values winning on identity.
func (l *Loader[T]) Merge(items []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range items {
		l.mergeOne(item)
	}
}

// Get returns the item stored under the given identity.
func (l *Loader[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i, ok := l.index[id]; ok {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Snapshot returns the collection and total for rollback bookkeeping.
func (l *Loader[T]) Snapshot() ([]T, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]T, len(l.items))
	copy(items, l.items)
	return items, l.total
}

// Restore replaces the collection with a previously taken snapshot.
func (l *Loader[T]) Restore(items []T, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make([]T, len(items))
	copy(l.items, items)
	l.reindex()
	l.total = total
}

// Items returns a copy of the collection in order.
func (l *Loader[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// HasMore reports whether the server has further pages.
func (l *Loader[T]) HasMore() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasMore
}

// Total returns the server-reported total count.
func (l *Loader[T]) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// InsertFront prepends an optimistic item and bumps the total.
func (l *Loader[T]) InsertFront(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.id(item)
	if _, exists := l.index[id]; exists {
		l.items[l.index[id]] = item
		return
	}
	l.items = append([]T{item}, l.items...)
	l.reindex()
	l.total++
}

// Swap replaces the item stored under oldID with the given item, which
// may carry a different (server-assigned) identity.
func (l *Loader[T]) Swap(oldID string, item T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[oldID]
	if !ok {
		return
	}
	l.items[i] = item
	l.reindex()
}

// Remove deletes the item with the given identity and drops the total.
func (l *Loader[T]) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[id]
	if !ok {
		return
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	l.reindex()
	if l.total > 0 {
		l.total--
	}
}

// replace swaps the whole collection for freshly fetched state.
func (l *Loader[T]) replace(items []T, total int, hasMore bool) {
	l.items = make([]T, 0, len(items))
	l.index = make(map[string]int, len(items))
	for _, item := range items {
		l.mergeOne(item)
	}
	l.page = 1
	l.total = total
	l.hasMore = hasMore
}

// mergeOne appends an item, or overwrites in place when its identity is
// already present (the later authoritative value wins, the count is not
// double-incremented).
func (l *Loader[T]) mergeOne(item T) {
	id := l.id(item)
	if i, exists := l.index[id]; exists {
		l.items[i] = item
		return
	}
	l.index[id] = len(l.items)
	l.items = append(l.items, item)
}

// reindex rebuilds the identity index after positional changes.
func (l *Loader[T]) reindex() {
	l.index = make(map[string]int, len(l.items))
	for i, item := range l.items {
		l.index[l.id(item)] = i
	}
}
