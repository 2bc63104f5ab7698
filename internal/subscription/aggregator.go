package subscription

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/unknownmsv/O1Sub/internal/cache"
	"github.com/unknownmsv/O1Sub/internal/domain"
)

// Aggregator resolves lists of subscription URLs into one server list.
type Aggregator struct {
	cache       cache.Cache
	fetcher     domain.Fetcher
	logger      zerolog.Logger
	concurrency int
}

// NewAggregator builds an aggregator. concurrency below 2 fetches URLs one
// after another.
func NewAggregator(c cache.Cache, f domain.Fetcher, logger zerolog.Logger, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{cache: c, fetcher: f, logger: logger, concurrency: concurrency}
}

// Aggregate returns the lines of every URL in input order joined by newlines.
// A URL that cannot be fetched or decoded is logged and left out.
func (a *Aggregator) Aggregate(ctx context.Context, urls []string) string {
	results := make([][]string, len(urls))

	g := errgroup.Group{}
	g.SetLimit(a.concurrency)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			results[i] = a.resolve(ctx, url)
			return nil
		})
	}
	_ = g.Wait()

	var lines []string
	for _, r := range results {
		lines = append(lines, r...)
	}
	return strings.Join(lines, "\n")
}

func (a *Aggregator) resolve(ctx context.Context, url string) []string {
	lines, err := a.cache.GetOrFetch(ctx, url, func(ctx context.Context) ([]string, error) {
		return a.fetcher.Fetch(ctx, url)
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("url", url).Msg("subscription fetch failed")
		return nil
	}
	return lines
}
