// Package stock implements the Stock Cell: an atomic counter guarding a
// finite inventory, with a short-TTL read cache on top. It is the sole
// source of truth for remaining inventory in one Engine process.
package stock

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidQuantity is returned when a caller violates the q > 0
// precondition on TryDecrement. Per spec.md §4.1 this is a programming
// error, never silently clamped.
var ErrInvalidQuantity = errors.New("stock: quantity must be greater than 0")

// cacheEntry is the (value, expiry) pair read atomically on the fast path
// and refreshed under the same mutex that guards total (spec.md §9: "do
// not introduce a second lock").
type cacheEntry struct {
	value  int
	expiry time.Time
}

// Cell is the atomic counter plus its cache; one per Engine process. The
// zero value is not usable — construct with New.
type Cell struct {
	mu    sync.Mutex
	total int

	cacheTTL time.Duration
	cache    atomic.Pointer[cacheEntry]

	now func() time.Time
}

// New creates a Stock Cell with total = initialStock and the given cache
// TTL (spec.md default: 1s). initialStock must be >= 0.
func New(initialStock int, cacheTTL time.Duration) (*Cell, error) {
	if initialStock < 0 {
		return nil, errors.New("stock: initial stock must be >= 0")
	}
	return &Cell{
		total:    initialStock,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}, nil
}

// TryDecrement implements spec.md §4.1: under mutual exclusion, if
// total >= q, set total -= q, invalidate the cache, and return (true,
// total); otherwise return (false, total) without mutation. The critical
// section is O(1): an integer compare-and-subtract plus cache
// invalidation, no I/O, no allocation.
func (c *Cell) TryDecrement(q int) (accepted bool, remaining int, err error) {
	if q <= 0 {
		return false, 0, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.total >= q {
		c.total -= q
		c.cache.Store(nil)
		return true, c.total, nil
	}

	return false, c.total, nil
}

// Snapshot implements spec.md §4.1: if a cached value is present and not
// expired, return it without entering the critical section; otherwise
// enter the critical section, read total, refresh the cache, and return
// total. Staleness is bounded by cache TTL plus one decrement latency.
func (c *Cell) Snapshot() int {
	if entry := c.cache.Load(); entry != nil && c.now().Before(entry.expiry) {
		return entry.value
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Re-check under the lock: another goroutine may have refreshed the
	// cache (or a concurrent decrement may have invalidated it) between
	// the lock-free load above and acquiring the mutex.
	if entry := c.cache.Load(); entry != nil && c.now().Before(entry.expiry) {
		return entry.value
	}

	value := c.total
	c.cache.Store(&cacheEntry{value: value, expiry: c.now().Add(c.cacheTTL)})

	return value
}
