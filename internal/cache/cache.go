package cache

import "sync"

// Kind names an entity family held in the cache.
type Kind string

const (
	KindNotification Kind = "notification"
	KindEngagement   Kind = "engagement"
	KindComment      Kind = "comment"
	KindRating       Kind = "rating"
	KindFollow       Kind = "follow"
)

type bucket struct {
	entities map[string]any
	order    []string
}

// Cache is an in-memory, per-kind store of the last known server truth.
// Entities within a kind keep their arrival order so that collections
// replaced wholesale by an authoritative read preserve server ordering.
//
// Only two paths may write here: authoritative reads (polling, page loads)
// and the optimistic mutation controller. UI consumers read only.
type Cache struct {
	mu      sync.RWMutex
	buckets map[Kind]*bucket
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{buckets: make(map[Kind]*bucket)}
}

func (c *Cache) bucketFor(kind Kind) *bucket {
	b, ok := c.buckets[kind]
	if !ok {
		b = &bucket{entities: make(map[string]any)}
		c.buckets[kind] = b
	}
	return b
}

// Get returns the cached entity for (kind, id), if present.
func (c *Cache) Get(kind Kind, id string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.buckets[kind]
	if !ok {
		return nil, false
	}
	e, ok := b.entities[id]
	return e, ok
}

// Upsert stores an entity under (kind, id). Last write wins; a new id is
// appended to the kind's ordering, an existing id keeps its position.
func (c *Cache) Upsert(kind Kind, id string, entity any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.bucketFor(kind)
	if _, exists := b.entities[id]; !exists {
		b.order = append(b.order, id)
	}
	b.entities[id] = entity
}

// Remove deletes the entity under (kind, id). Removing an absent id is a
// no-op.
func (c *Cache) Remove(kind Kind, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[kind]
	if !ok {
		return
	}
	if _, exists := b.entities[id]; !exists {
		return
	}
	delete(b.entities, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i:i], b.order[i+1:]...)
			break
		}
	}
}

// Replace swaps the entire collection for a kind with the given ordered
// ids and entities. Used by authoritative reads that return full state.
func (c *Cache) Replace(kind Kind, ids []string, entities map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := &bucket{
		entities: make(map[string]any, len(entities)),
		order:    make([]string, len(ids)),
	}
	copy(b.order, ids)
	for id, e := range entities {
		b.entities[id] = e
	}
	c.buckets[kind] = b
}

// List returns all entities of a kind in order.
func (c *Cache) List(kind Kind) []any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.buckets[kind]
	if !ok {
		return nil
	}
	out := make([]any, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.entities[id])
	}
	return out
}

// Len returns the number of entities of a kind.
func (c *Cache) Len(kind Kind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.buckets[kind]
	if !ok {
		return 0
	}
	return len(b.entities)
}
