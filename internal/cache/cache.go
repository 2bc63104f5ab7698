// Package cache keeps decoded subscription payloads keyed by URL for a fixed
// time-to-live.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a fetched subscription is reused.
const DefaultTTL = 600 * time.Second

// FetchFunc produces a fresh value for a key.
type FetchFunc func(ctx context.Context) ([]string, error)

// Cache returns the cached lines for key, calling fetch when the entry is
// absent or stale. A failed fetch leaves the cache untouched.
type Cache interface {
	GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]string, error)
}

// Entry is one cached fetch result.
type Entry struct {
	Data      []string  `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) < ttl
}
