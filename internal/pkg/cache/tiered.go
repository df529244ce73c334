// Package cache implements a two-tier in-process cache: a whole-collection
// snapshot plus individually addressable per-key entries. Both tiers live
// behind one mutex so a reader can never observe them disagreeing about a
// key (no torn state between two independently locked structures).
//
// Snapshot slices are treated as immutable once stored: every write builds
// a fresh slice, so a GetAll result stays valid for the caller even while
// concurrent writes land. The per-key tier is TTL'd and LRU-bounded; the
// snapshot carries its own TTL and no count bound (it is a single slot).
package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// Tiered is a read-through cache over a collection of V keyed by K.
// Misses are signalled with a false second return, never an error; the
// caller falls back to the source of truth and stores the result.
type Tiered[K comparable, V any] struct {
	mu         sync.Mutex
	keyOf      func(V) K
	ttl        time.Duration // <= 0 disables expiry
	maxEntries int           // <= 0 disables the per-key bound

	snapshot    []V
	hasSnapshot bool
	snapshotExp time.Time

	items map[K]*list.Element // values are *entry[K, V]
	order *list.List          // front = most recently used
}

// NewTiered builds an empty cache. keyOf extracts the key embedded in a
// value and must be cheap and pure.
func NewTiered[K comparable, V any](keyOf func(V) K, ttl time.Duration, maxEntries int) *Tiered[K, V] {
	return &Tiered[K, V]{
		keyOf:      keyOf,
		ttl:        ttl,
		maxEntries: maxEntries,
		items:      make(map[K]*list.Element),
		order:      list.New(),
	}
}

// GetAll returns the whole-collection snapshot, or (nil, false) when the
// slot is empty or expired. The returned slice must not be mutated.
func (c *Tiered[K, V]) GetAll() ([]V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasSnapshot {
		return nil, false
	}
	if c.expired(c.snapshotExp) {
		c.snapshot = nil
		c.hasSnapshot = false
		return nil, false
	}
	return c.snapshot, true
}

// PutAll stores an immutable copy of collection as the snapshot and
// repopulates the per-key tier from it, atomically for readers.
func (c *Tiered[K, V]) PutAll(collection []V) {
	snap := make([]V, len(collection))
	copy(snap, collection)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = snap
	c.hasSnapshot = true
	c.snapshotExp = c.deadline()

	c.items = make(map[K]*list.Element, len(snap))
	c.order.Init()
	for _, v := range snap {
		c.putLocked(c.keyOf(v), v)
	}
}

// GetByID returns the entry for key. On a per-key miss with a resident
// snapshot, the snapshot is scanned and a matching value is promoted into
// the per-key tier before being returned, saving a source-of-truth query.
func (c *Tiered[K, V]) GetByID(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		if !c.expired(e.expiresAt) {
			c.order.MoveToFront(elem)
			return e.value, true
		}
		c.removeLocked(key, elem)
	}

	if c.hasSnapshot && !c.expired(c.snapshotExp) {
		for _, v := range c.snapshot {
			if c.keyOf(v) == key {
				c.putLocked(key, v)
				return v, true
			}
		}
	}

	var zero V
	return zero, false
}

// PutByID stores the per-key entry and, when a snapshot is resident,
// replaces the matching element in it (appending when absent) so the two
// tiers never disagree for that key.
func (c *Tiered[K, V]) PutByID(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.putLocked(key, value)

	if !c.hasSnapshot {
		return
	}
	snap := make([]V, 0, len(c.snapshot)+1)
	replaced := false
	for _, v := range c.snapshot {
		if c.keyOf(v) == key {
			snap = append(snap, value)
			replaced = true
			continue
		}
		snap = append(snap, v)
	}
	if !replaced {
		snap = append(snap, value)
	}
	c.snapshot = snap
}

// InvalidateByID drops the per-key entry and removes the matching element
// from a resident snapshot.
func (c *Tiered[K, V]) InvalidateByID(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeLocked(key, elem)
	}

	if !c.hasSnapshot {
		return
	}
	snap := make([]V, 0, len(c.snapshot))
	for _, v := range c.snapshot {
		if c.keyOf(v) == key {
			continue
		}
		snap = append(snap, v)
	}
	c.snapshot = snap
}

// InvalidateAll clears both tiers unconditionally.
func (c *Tiered[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
	c.hasSnapshot = false
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

// Len reports the number of resident per-key entries.
func (c *Tiered[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Tiered[K, V]) putLocked(key K, value V) {
	exp := c.deadline()
	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		e.value = value
		e.expiresAt = exp
		c.order.MoveToFront(elem)
		return
	}
	elem := c.order.PushFront(&entry[K, V]{key: key, value: value, expiresAt: exp})
	c.items[key] = elem

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		tail := c.order.Back()
		if tail != nil {
			e := tail.Value.(*entry[K, V])
			c.removeLocked(e.key, tail)
		}
	}
}

func (c *Tiered[K, V]) removeLocked(key K, elem *list.Element) {
	delete(c.items, key)
	c.order.Remove(elem)
}

func (c *Tiered[K, V]) deadline() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.ttl)
}

func (c *Tiered[K, V]) expired(deadline time.Time) bool {
	if c.ttl <= 0 || deadline.IsZero() {
		return false
	}
	return time.Now().After(deadline)
}
