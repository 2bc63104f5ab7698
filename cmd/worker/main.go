// Command worker keeps the shared Redis link cache warm so public
// subscription requests rarely wait on upstream fetches.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/unknownmsv/O1Sub/internal/bootstrap"
	"github.com/unknownmsv/O1Sub/internal/infra"
	"github.com/unknownmsv/O1Sub/internal/subscription"
)

type previewer interface {
	Preview(ctx context.Context, category string) (string, error)
}

type warmer struct {
	links    *subscription.Links
	service  previewer
	logger   infra.Logger
	interval time.Duration
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadToolConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)
	if cfg.RedisURL == "" {
		logger.Fatal().Msg("worker: REDIS_URL is required, the in-memory cache is private to each process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: open documents failed")
	}
	defer stores.Close()
	go stores.Watch(ctx)

	service, err := stores.NewService(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: build service failed")
	}

	w := &warmer{
		links:    stores.Links,
		service:  service,
		logger:   logger,
		interval: cfg.WarmInterval,
	}
	logger.Info().Dur("interval", w.interval).Msg("worker started")
	w.Run(ctx)
	logger.Info().Msg("worker stopped")
}

// Run warms every category immediately and then once per interval until ctx
// is done.
func (w *warmer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.warm(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// warm aggregates each category through the cache and returns how many
// categories were processed.
func (w *warmer) warm(ctx context.Context) int {
	start := time.Now()
	done := 0
	for _, category := range w.links.Categories() {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.service.Preview(ctx, category); err != nil {
			w.logger.Warn().Err(err).Str("category", category).Msg("warm category failed")
			continue
		}
		done++
	}
	w.logger.Debug().Int("categories", done).Dur("took", time.Since(start)).Msg("cache warmed")
	return done
}
