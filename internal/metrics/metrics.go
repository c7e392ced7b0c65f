// Package metrics exposes the proxy's collectors on a listener separate from the API port.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/config"
)

const defaultPath = "/metrics"

// Build identifies the running binary in stacproxy_build_info.
type Build struct {
	Version  string
	Revision string
}

// Provider owns the runtime collectors and serves them together with the request,
// upstream and preview collectors of the default registry.
type Provider struct {
	reg  *prometheus.Registry
	addr string
	path string
}

func New(mc config.MetricsCfg, b Build) *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stacproxy_build_info",
		Help: "Version, revision and Go runtime of the running proxy (always 1).",
	}, []string{"version", "revision", "go_version"})
	reg.MustRegister(info)
	if b.Version == "" {
		b.Version = "dev"
	}
	info.WithLabelValues(b.Version, b.Revision, runtime.Version()).Set(1)

	path := mc.Path
	if path == "" {
		path = defaultPath
	}
	return &Provider{reg: reg, addr: mc.Addr, path: path}
}

func (p *Provider) Path() string { return p.path }

func (p *Provider) Handler() http.Handler {
	g := prometheus.Gatherers{p.reg, onlyApp{prometheus.DefaultGatherer}}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (p *Provider) Register(cs ...prometheus.Collector) {
	p.reg.MustRegister(cs...)
}

// Serve listens on the configured address until ctx is cancelled, then shuts down.
func (p *Provider) Serve(ctx context.Context, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(p.path, p.Handler())
	srv := &http.Server{
		Addr:              p.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics listen", "addr", p.addr, "path", p.path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listen %s: %w", p.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics shutdown: %w", err)
	}
	return nil
}
