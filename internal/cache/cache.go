// Package cache provides a small TTL cache abstraction used to memoize
// eligibility lookups. Entries may be served stale up to their TTL.
package cache

import (
	"context"
	"time"
)

// EligibilityPrefix namespaces cached eligibility verdicts. Catalog changes
// invalidate the whole prefix.
const EligibilityPrefix = "eligibility:"

// Cache is a string key/value store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether the key was present and
	// unexpired.
	Get(ctx context.Context, key string) (string, bool)
	// Set stores a value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Invalidate removes every key starting with prefix.
	Invalidate(ctx context.Context, prefix string) error
}
