package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/stac-aoi-proxy/internal/aoi"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/config"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/httpclient"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/observability"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/core/server"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/logger"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/metrics"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/search"
	"github.com/mohammed-shakir/stac-aoi-proxy/internal/stac"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.FromEnv()

	root := &cobra.Command{
		Use:           "stacproxy",
		Short:         "STAC search proxy scoped to an area of interest",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	pf.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug|info|warn|error")
	pf.StringVar(&cfg.STACURL, "stac-url", cfg.STACURL, "STAC API base URL")
	pf.StringVar(&cfg.AOIFile, "aoi-file", cfg.AOIFile, "AOI GeoJSON feature collection")
	pf.DurationVar(&cfg.STACTimeout, "stac-timeout", cfg.STACTimeout, "upstream search timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), cfg)
			},
		},
		newAOICmd(&cfg),
	)
	return root
}

func newAOICmd(cfg *config.Config) *cobra.Command {
	aoiCmd := &cobra.Command{Use: "aoi", Short: "Inspect the configured area of interest"}
	aoiCmd.AddCommand(&cobra.Command{
		Use:   "bbox",
		Short: "Print the bbox a search without bbox would use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			zl := logger.Build(logger.Config{Level: cfg.LogLevel, Console: true, Component: "cli"}, os.Stderr)
			r := aoi.NewResolver(aoi.FileSource{Path: cfg.AOIFile}, logger.NewSlog(&zl))
			bb, err := r.ResolveBBox(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(bb)
		},
	})
	return aoiCmd
}

func serve(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Service:   "stacproxy",
		Component: "api",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting stacproxy",
		"addr", cfg.Addr,
		"version", Version,
		"stac_url", cfg.STACURL,
		"aoi_file", cfg.AOIFile,
		"stac_timeout", cfg.STACTimeout)

	catalog, err := stac.NewClient(appLog, httpclient.NewOutbound(cfg.STACTimeout), cfg.STACURL)
	if err != nil {
		appLog.Error("failed to initialize stac client", "err", err)
		return err
	}
	resolver := aoi.NewResolver(aoi.FileSource{Path: cfg.AOIFile}, appLog)
	if _, err := resolver.Load(parent); err != nil {
		// /aoi and bbox-less searches will answer 500 until the file appears
		appLog.Warn("aoi source not readable at startup", "err", err)
	}

	handler := server.NewHandler(cfg, appLog, server.Deps{
		Searcher: search.New(appLog, resolver, catalog),
		AOI:      resolver,
	})

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		startMetrics(ctx, cfg.Metrics, appLog)
	}

	if err := server.Run(ctx, cfg, appLog, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return fmt.Errorf("serve: %w", err)
	}
	appLog.Info("server stopped")
	return nil
}

func startMetrics(ctx context.Context, mc config.MetricsCfg, log *slog.Logger) {
	p := metrics.New(mc, metrics.Build{
		Version:  Version,
		Revision: os.Getenv("BUILD_REVISION"),
	})
	go func() {
		if err := p.Serve(ctx, log); err != nil {
			log.Error("metrics server exited", "err", err)
		}
	}()
}
