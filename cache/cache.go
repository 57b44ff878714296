// Package cache defines the in-process cache used for request cooldown
// tracking. Entries are advisory: a cache miss never blocks a flow, it only
// skips the cheap early rejection.
package cache

import "time"

// Cache is a generic key/value cache with optional per-entry TTL.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value with cost, returning true if accepted
	Set(key K, value V, cost int64) bool

	// SetWithTTL stores a value with cost and TTL, returning true if accepted
	SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool
}
