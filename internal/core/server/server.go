// Package server wires the routes and runs the HTTP listener.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/config"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/health"
	middleware "github.com/mohammed-shakir/stac-aoi-proxy/internal/core/middleware"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/router"
)

type Deps struct {
	Searcher router.Searcher
	AOI      router.AOILoader
}

// NewHandler builds the API router.
func NewHandler(cfg config.Config, logger *slog.Logger, d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/health", router.Instrument("/health", health.Liveness()))
	r.Get("/ready", router.Instrument("/ready", health.Readiness(map[string]health.Checker{
		"aoi": health.CheckerFunc(func(ctx context.Context) error {
			_, err := d.AOI.Load(ctx)
			return err
		}),
	})))
	r.Get("/aoi", router.Instrument("/aoi", router.HandleAOI(logger, d.AOI)))
	r.Get("/stac/search", router.Instrument("/stac/search", router.HandleSearch(logger, cfg, d.Searcher)))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

// Run serves handler on cfg.Addr until ctx is done.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, handler http.Handler) error {
	// write timeout outlives the upstream timeout so a slow catalog answer still reaches the client
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.STACTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
