package schema

import (
	"context"
	"time"

	"github.com/dmitrymomot/entityvalidate/pkg/cache"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// Cached keeps schemas resolved by another provider in memory.
// Errors from the wrapped provider are not cached.
type Cached struct {
	next     validator.Metadata
	lru      *cache.LRU[Key, []validator.FieldSpec]
	onLookup func(hit bool)
}

// NewCached caches up to capacity schemas from next, each for ttl.
// A zero ttl keeps entries until evicted.
func NewCached(next validator.Metadata, capacity int, ttl time.Duration, opts ...cache.Option[Key, []validator.FieldSpec]) *Cached {
	return &Cached{
		next: next,
		lru:  cache.New(capacity, ttl, opts...),
	}
}

// OnLookup sets a callback run on every FieldsInfo call with whether the
// schema was served from memory. Set it before the provider is shared.
func (c *Cached) OnLookup(fn func(hit bool)) *Cached {
	c.onLookup = fn
	return c
}

func (c *Cached) FieldsInfo(ctx context.Context, entityType, bundle string) ([]validator.FieldSpec, error) {
	k := Key{entityType, bundle}
	specs, ok := c.lru.Get(k)
	if c.onLookup != nil {
		c.onLookup(ok)
	}
	if ok {
		return cloneSpecs(specs), nil
	}

	specs, err := c.next.FieldsInfo(ctx, entityType, bundle)
	if err != nil {
		return nil, err
	}
	c.lru.Put(k, cloneSpecs(specs))
	return specs, nil
}

// Invalidate drops the cached schema of one bundle.
func (c *Cached) Invalidate(entityType, bundle string) {
	c.lru.Remove(Key{entityType, bundle})
}

// InvalidateEntity drops the cached schemas of every bundle of entityType.
func (c *Cached) InvalidateEntity(entityType string) int {
	return c.lru.RemoveFunc(func(k Key) bool { return k.EntityType == entityType })
}

// Purge drops every cached schema.
func (c *Cached) Purge() {
	c.lru.Purge()
}
