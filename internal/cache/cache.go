package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTL is the injected cache capability handed to tool collaborators. It is
// safe for concurrent readers and writers; callers never touch a
// process-wide singleton, so tests can swap in a deterministic fake.
type TTL[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Evict(key K)
	Len() int
}

// LRU is a TTL cache backed by an expirable LRU. The TTL is fixed at
// construction and applies per entry from its last Set.
type LRU[K comparable, V any] struct {
	inner *expirable.LRU[K, V]
}

// NewLRU builds an LRU holding at most maxEntries values that expire ttl
// after insertion. maxEntries <= 0 defaults to 128, ttl <= 0 to 30 minutes.
func NewLRU[K comparable, V any](maxEntries int, ttl time.Duration) *LRU[K, V] {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &LRU[K, V]{inner: expirable.NewLRU[K, V](maxEntries, nil, ttl)}
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil || c.inner == nil {
		return zero, false
	}
	return c.inner.Get(key)
}

func (c *LRU[K, V]) Set(key K, value V) {
	if c == nil || c.inner == nil {
		return
	}
	c.inner.Add(key, value)
}

func (c *LRU[K, V]) Evict(key K) {
	if c == nil || c.inner == nil {
		return
	}
	c.inner.Remove(key)
}

func (c *LRU[K, V]) Len() int {
	if c == nil || c.inner == nil {
		return 0
	}
	return c.inner.Len()
}
