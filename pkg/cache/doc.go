// Package cache provides a generic, thread-safe LRU cache with optional
// entry expiry.
//
// The schema package uses it to keep resolved field lists in memory between
// validation calls:
//
//	c := cache.New[string, []validator.FieldSpec](256, 5*time.Minute)
//	c.Put("node/article", specs)
//	specs, ok := c.Get("node/article")
//
// A zero TTL keeps entries until they are evicted by capacity. Expired entries
// are dropped lazily on access.
package cache
