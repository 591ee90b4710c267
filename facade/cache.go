package facade

import (
	"sync"
	"time"
)

// cacheSlot memoizes one expensive read behind a TTL. Each category (GPU
// info, module status) owns an independent slot with its own TTL.
//
// Concurrent readers may race past an expired entry and refresh twice; the
// later write simply wins. Single-flight de-duplication is deliberately not
// done here.
type cacheSlot[T any] struct {
	mu        sync.RWMutex
	ttl       time.Duration
	value     T
	fetchedAt time.Time
}

func newCacheSlot[T any](ttl time.Duration) *cacheSlot[T] {
	return &cacheSlot[T]{ttl: ttl}
}

// get returns the memoized value while it is fresh, otherwise calls fetch
// and stores the result. The returned time is when the value was fetched.
func (c *cacheSlot[T]) get(fetch func() (T, error)) (T, time.Time, error) {
	c.mu.RLock()
	if !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl {
		v, at := c.value, c.fetchedAt
		c.mu.RUnlock()
		return v, at, nil
	}
	c.mu.RUnlock()

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, time.Time{}, err
	}

	c.mu.Lock()
	c.value = v
	c.fetchedAt = time.Now()
	at := c.fetchedAt
	c.mu.Unlock()
	return v, at, nil
}

// invalidate drops the memoized entry so the next read refetches. Mutating
// operations that change the category's answer call this eagerly.
func (c *cacheSlot[T]) invalidate() {
	c.mu.Lock()
	var zero T
	c.value = zero
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// setTTL adjusts the slot's TTL (config hot-reload).
func (c *cacheSlot[T]) setTTL(ttl time.Duration) {
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}
