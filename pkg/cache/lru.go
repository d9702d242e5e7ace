package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// LRU is a fixed-capacity cache that evicts the least recently used entry.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[K]*list.Element
	order    *list.List
	now      func() time.Time
	onEvict  func(key K, value V)
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithClock replaces time.Now, for tests.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *LRU[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEvictCallback is called for every entry dropped by capacity, expiry or Purge.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// New creates a cache holding at most capacity entries, each for at most ttl.
// It panics if capacity is not positive.
func New[K comparable, V any](capacity int, ttl time.Duration, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	c := &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[K]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[K, V])
	if c.expired(e) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Put stores value under key, evicting the least recently used entry when full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		e := elem.Value.(*entry[K, V])
		e.value = value
		e.expires = expires
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry[K, V]{key: key, value: value, expires: expires})
	if c.order.Len() > c.capacity {
		c.remove(c.order.Back())
	}
}

// Remove drops key. It reports whether the key was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if ok {
		c.remove(elem)
	}
	return ok
}

// RemoveFunc drops every entry whose key matches and returns how many were dropped.
func (c *LRU[K, V]) RemoveFunc(match func(key K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, elem := range c.items {
		if match(key) {
			c.remove(elem)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.order.Len() > 0 {
		c.remove(c.order.Back())
	}
}

func (c *LRU[K, V]) expired(e *entry[K, V]) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

// Must be called with the lock held.
func (c *LRU[K, V]) remove(elem *list.Element) {
	e := c.order.Remove(elem).(*entry[K, V])
	delete(c.items, e.key)
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}
