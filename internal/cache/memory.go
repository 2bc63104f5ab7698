package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Memory is an in-process cache. Entries are never evicted; a stale entry is
// only replaced on the next access.
type Memory struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	items map[string]Entry
	group singleflight.Group
}

// Option configures a Memory cache.
type Option func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty cache with the given TTL.
func NewMemory(ttl time.Duration, opts ...Option) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{ttl: ttl, now: time.Now, items: map[string]Entry{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrFetch returns the fresh entry for key or fetches it. Concurrent misses
// share one fetch, which runs detached from any single caller's cancellation;
// each caller still stops waiting when its own ctx is done.
func (m *Memory) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]string, error) {
	if data, ok := m.lookup(key); ok {
		return data, nil
	}
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		if data, ok := m.lookup(key); ok {
			return data, nil
		}
		fetchedAt := m.now()
		data, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.items[key] = Entry{Data: data, Timestamp: fetchedAt}
		m.mu.Unlock()
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]string)), nil
	}
}

// Len returns the number of stored entries, stale ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory) lookup(key string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.items[key]
	if !ok || !entry.Fresh(m.now(), m.ttl) {
		return nil, false
	}
	return slices.Clone(entry.Data), true
}

var _ Cache = (*Memory)(nil)
