package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/unknownmsv/O1Sub/internal/cache"
)

func TestAggregatePreservesOrder(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/a": b64("a1\na2"),
		"/b": b64("b1"),
		"/c": b64("c1\n\nc2\n"),
	})
	urls := []string{up.URL + "/a", up.URL + "/b", up.URL + "/c"}

	for _, concurrency := range []int{1, 3} {
		agg := NewAggregator(cache.NewMemory(cache.DefaultTTL), NewHTTPFetcher(time.Second), zerolog.Nop(), concurrency)
		got := agg.Aggregate(context.Background(), urls)
		if want := "a1\na2\nb1\nc1\nc2"; got != want {
			t.Fatalf("concurrency %d: Aggregate = %q, want %q", concurrency, got, want)
		}
	}
}

func TestAggregateConcatenatesSingleResults(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/u1": b64("x\ny"),
		"/u2": b64("z"),
	})
	agg := NewAggregator(cache.NewMemory(cache.DefaultTTL), NewHTTPFetcher(time.Second), zerolog.Nop(), 1)
	ctx := context.Background()

	one := agg.Aggregate(ctx, []string{up.URL + "/u1"})
	two := agg.Aggregate(ctx, []string{up.URL + "/u2"})
	both := agg.Aggregate(ctx, []string{up.URL + "/u1", up.URL + "/u2"})
	if both != one+"\n"+two {
		t.Fatalf("Aggregate([u1,u2]) = %q, want %q", both, one+"\n"+two)
	}
}

func TestAggregateSkipsFailures(t *testing.T) {
	up := newUpstream(t, map[string]string{
		"/good":    b64("g1\ng2"),
		"/garbage": "not base64 at all!",
	})
	agg := NewAggregator(cache.NewMemory(cache.DefaultTTL), NewHTTPFetcher(time.Second), zerolog.Nop(), 1)
	ctx := context.Background()

	got := agg.Aggregate(ctx, []string{up.URL + "/missing", up.URL + "/garbage", up.URL + "/good"})
	if got != "g1\ng2" {
		t.Fatalf("Aggregate = %q, want only the good url", got)
	}
	if got := agg.Aggregate(ctx, []string{up.URL + "/missing"}); got != "" {
		t.Fatalf("all-failed aggregation = %q, want empty", got)
	}
	if got := agg.Aggregate(ctx, nil); got != "" {
		t.Fatalf("empty aggregation = %q, want empty", got)
	}
	if up.Hits("/missing") != 2 {
		t.Fatalf("failed url must not be cached, hits = %d", up.Hits("/missing"))
	}
}

func TestAggregateUsesCacheWithinTTL(t *testing.T) {
	up := newUpstream(t, map[string]string{"/a": b64("s1")})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := cache.NewMemory(cache.DefaultTTL, cache.WithClock(func() time.Time { return now }))
	agg := NewAggregator(c, NewHTTPFetcher(time.Second), zerolog.Nop(), 1)
	ctx := context.Background()
	urls := []string{up.URL + "/a"}

	first := agg.Aggregate(ctx, urls)
	now = now.Add(cache.DefaultTTL - time.Second)
	second := agg.Aggregate(ctx, urls)
	if first != second || up.Hits("/a") != 1 {
		t.Fatalf("expected cache hit: first %q second %q hits %d", first, second, up.Hits("/a"))
	}

	now = now.Add(2 * time.Second)
	_ = agg.Aggregate(ctx, urls)
	if up.Hits("/a") != 2 {
		t.Fatalf("expected exactly one re-fetch after ttl, hits = %d", up.Hits("/a"))
	}
}
