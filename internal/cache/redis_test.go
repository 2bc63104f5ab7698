package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), "redis://"+mr.Addr(), "o1sub", ttl, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisMissStoresWithTTL(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	calls := 0

	got, err := c.GetOrFetch(context.Background(), "https://a.example/sub", countingFetch(&calls, "s1", "s2"))
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if diff := cmp.Diff([]string{"s1", "s2"}, got); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}

	key := "o1sub:link:https://a.example/sub"
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("stored ttl = %s, want 1m", ttl)
	}
	raw, err := mr.Get(key)
	if err != nil {
		t.Fatalf("stored entry missing: %v", err)
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("stored entry is not json: %v", err)
	}
	if diff := cmp.Diff([]string{"s1", "s2"}, entry.Data); diff != "" {
		t.Fatalf("stored data mismatch (-want +got):\n%s", diff)
	}
	if entry.Timestamp.IsZero() {
		t.Fatal("stored entry has no timestamp")
	}
}

func TestRedisHitSkipsFetch(t *testing.T) {
	c, _ := newTestRedis(t, time.Minute)
	calls := 0
	ctx := context.Background()

	if _, err := c.GetOrFetch(ctx, "u", countingFetch(&calls, "s1")); err != nil {
		t.Fatalf("first GetOrFetch: %v", err)
	}
	got, err := c.GetOrFetch(ctx, "u", countingFetch(&calls, "other"))
	if err != nil {
		t.Fatalf("second GetOrFetch: %v", err)
	}
	if diff := cmp.Diff([]string{"s1"}, got); diff != "" {
		t.Fatalf("hit returned (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
}

func TestRedisRefetchesAfterExpiry(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	calls := 0
	ctx := context.Background()

	if _, err := c.GetOrFetch(ctx, "u", countingFetch(&calls, "old")); err != nil {
		t.Fatalf("first GetOrFetch: %v", err)
	}
	mr.FastForward(time.Minute + time.Second)

	got, err := c.GetOrFetch(ctx, "u", countingFetch(&calls, "new"))
	if err != nil {
		t.Fatalf("GetOrFetch after expiry: %v", err)
	}
	if diff := cmp.Diff([]string{"new"}, got); diff != "" {
		t.Fatalf("after expiry (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls)
	}
}

func TestRedisRefetchesCorruptEntry(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	key := "o1sub:link:u"
	if err := mr.Set(key, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	calls := 0

	got, err := c.GetOrFetch(context.Background(), "u", countingFetch(&calls, "fresh"))
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if diff := cmp.Diff([]string{"fresh"}, got); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
	raw, _ := mr.Get(key)
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("corrupt entry not overwritten: %q", raw)
	}
}

func TestRedisDoesNotStoreFailures(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	boom := errors.New("upstream down")

	_, err := c.GetOrFetch(context.Background(), "u", func(context.Context) ([]string, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if mr.Exists("o1sub:link:u") {
		t.Fatal("failed fetch was stored")
	}
}

func TestRedisFallsBackWhenServerGone(t *testing.T) {
	c, mr := newTestRedis(t, time.Minute)
	mr.Close()
	calls := 0

	got, err := c.GetOrFetch(context.Background(), "u", countingFetch(&calls, "direct"))
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if diff := cmp.Diff([]string{"direct"}, got); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", calls)
	}
}
