package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-nyc-airbnb/config"
	"github.com/aluiziolira/go-nyc-airbnb/dashboard"
	"github.com/aluiziolira/go-nyc-airbnb/export"
	"github.com/aluiziolira/go-nyc-airbnb/loader"
	"github.com/aluiziolira/go-nyc-airbnb/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "nyc-airbnb-dashboard"

func main() {
	defaults, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	datasetURL := flag.String("dataset", defaults.DatasetURL, "Dataset location: http(s) URL, CSV path, sqlite://path or postgres:// DSN")
	table := flag.String("table", defaults.DatasetTable, "Table to read from SQL sources")
	addr := flag.String("addr", defaults.Addr, "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", defaults.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	timeout := flag.Duration("timeout", defaults.Timeout, "Dataset fetch timeout")
	mapboxToken := flag.String("mapbox-token", defaults.MapboxToken, "Mapbox access token for map tiles")
	exportDir := flag.String("export-dir", defaults.ExportDir, "Write derived views to this directory on startup")
	exportFormat := flag.String("export-format", defaults.ExportFormat, "Export format: csv or json")
	verbose := flag.Bool("v", defaults.Verbose, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := *defaults
	cfg.DatasetURL = *datasetURL
	cfg.DatasetTable = *table
	cfg.Addr = *addr
	cfg.MetricsAddr = *metricsAddr
	cfg.Timeout = *timeout
	cfg.MapboxToken = *mapboxToken
	cfg.ExportDir = *exportDir
	cfg.ExportFormat = strings.ToLower(*exportFormat)
	cfg.Verbose = *verbose
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName)
	if err != nil {
		slog.Error("tracing setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("tracing shutdown failed", slog.Any("error", err))
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	l, err := loader.New(&cfg, loader.WithMetrics(loader.NewMetrics(registry)))
	if err != nil {
		slog.Error("initialising loader", slog.Any("error", err))
		os.Exit(1)
	}
	listings, err := l.Load(ctx)
	if err != nil {
		// The dashboard has nothing to show without its dataset.
		slog.Error("dataset unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	d := dashboard.New(listings, dashboard.Options{
		Title:         cfg.Title,
		StylesheetURL: cfg.StylesheetURL,
		MapboxToken:   cfg.MapboxToken,
		PlotlyURL:     cfg.PlotlyURL,
	})

	if cfg.ExportDir != "" {
		paths, err := export.WriteDir(cfg.ExportDir, cfg.ExportFormat, d.Views())
		if err != nil {
			slog.Error("export failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("views exported", slog.String("dir", cfg.ExportDir), slog.Int("files", len(paths)))
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           dashboard.NewRouter(d, dashboard.NewMetrics(registry)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening",
			slog.String("addr", cfg.Addr),
			slog.Int("listings", listings.Len()),
			slog.Int("regions", len(d.Selector().Options)-1),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections")
	case err := <-serveErr:
		if err != nil {
			slog.Error("server failed", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", slog.Any("error", err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
	}
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
