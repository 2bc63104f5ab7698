package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/unknownmsv/O1Sub/internal/bootstrap"
	"github.com/unknownmsv/O1Sub/internal/http/handlers"
	"github.com/unknownmsv/O1Sub/internal/http/httpapi"
	"github.com/unknownmsv/O1Sub/internal/infra"
	"github.com/unknownmsv/O1Sub/internal/infra/geoip"
	"github.com/unknownmsv/O1Sub/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogFile)

	ctx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()

	stores, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open documents")
	}
	defer stores.Close()
	go stores.Watch(ctx)

	service, err := stores.NewService(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build subscription service")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	proxies, err := middleware.NewProxyTrust(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	app := &handlers.App{
		Service:       service,
		Links:         stores.Links,
		Registry:      stores.Registry,
		Ledger:        stores.Ledger,
		Logger:        logger,
		AdminPassword: cfg.AdminPassword,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		PublicBaseURL: cfg.PublicBaseURL,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		CountryLookup:  resolver.Lookup(),
		CORSOrigins:    cfg.CORSAllowedOrigins,
		LoginPerMinute: cfg.RateLimitPerMin,
		Proxies:        proxies,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
