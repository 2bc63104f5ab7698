// Package bootstrap opens the persistent documents and assembles the
// subscription components shared by the API server and subctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/unknownmsv/O1Sub/internal/cache"
	"github.com/unknownmsv/O1Sub/internal/domain"
	"github.com/unknownmsv/O1Sub/internal/infra"
	"github.com/unknownmsv/O1Sub/internal/ledger"
	"github.com/unknownmsv/O1Sub/internal/storage"
	"github.com/unknownmsv/O1Sub/internal/subscription"
)

// Stores holds the three opened documents and the components that own them.
type Stores struct {
	Ledger   *ledger.Ledger
	Links    *subscription.Links
	Registry *subscription.Registry

	backend storage.Backend
	files   *storage.FileStore
	pool    *pgxpool.Pool
	reload  []storage.Reloader
	logger  zerolog.Logger
	closers []func() error
}

// Open picks the Postgres backend when DATABASE_URL is set and the data
// directory otherwise, then loads (and self-heals) every document.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Stores, error) {
	s := &Stores{logger: logger}

	var backend storage.Backend
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		if err := storage.MigratePostgres(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		backend = storage.NewPostgresStore(infra.NewSQLRunner(pool, logger))
		logger.Info().Msg("using postgres document store")
	} else {
		files, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		s.files = files
		backend = files
		logger.Info().Str("dir", files.BasePath()).Msg("using file document store")
	}

	s.backend = backend

	users, err := storage.Open(ctx, backend, storage.UsersDocument, domain.Users{}, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open %s: %w", storage.UsersDocument, err)
	}
	links, err := storage.Open(ctx, backend, storage.LinksDocument, domain.DefaultLinkSet(), logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open %s: %w", storage.LinksDocument, err)
	}
	custom, err := storage.Open(ctx, backend, storage.CustomSubsDocument, domain.CustomSubs{}, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open %s: %w", storage.CustomSubsDocument, err)
	}
	s.reload = []storage.Reloader{users, links, custom}

	s.Ledger = ledger.New(users, nil)
	s.Links = subscription.NewLinks(links)
	s.Registry = subscription.NewRegistry(custom, s.Ledger)
	return s, nil
}

// DocumentNames lists the persisted documents in a stable order.
func DocumentNames() []string {
	return []string{storage.UsersDocument, storage.LinksDocument, storage.CustomSubsDocument}
}

// Raw returns the stored bytes of the named document.
func (s *Stores) Raw(ctx context.Context, name string) ([]byte, error) {
	return s.backend.Read(ctx, name)
}

// Watch reloads hand-edited document files until ctx is done. It is a no-op
// for the Postgres backend.
func (s *Stores) Watch(ctx context.Context) {
	if s.files == nil {
		return
	}
	if err := storage.Watch(ctx, s.files, s.logger, s.reload...); err != nil {
		s.logger.Warn().Err(err).Msg("document watcher stopped")
	}
}

// NewService builds the link cache, fetcher and aggregator around the stores.
func (s *Stores) NewService(ctx context.Context, cfg *infra.Config) (*subscription.Service, error) {
	var c cache.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.CacheTTL, s.logger)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rc.Close)
		c = rc
		s.logger.Info().Msg("using redis link cache")
	} else {
		c = cache.NewMemory(cfg.CacheTTL)
	}
	agg := subscription.NewAggregator(c, subscription.NewHTTPFetcher(cfg.FetchTimeout), s.logger, cfg.FetchConcurrency)
	return subscription.NewService(s.Links, s.Registry, s.Ledger, agg), nil
}

// Close releases the database pool and cache connections.
func (s *Stores) Close() {
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			s.logger.Warn().Err(err).Msg("close failed")
		}
	}
	s.closers = nil
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}
