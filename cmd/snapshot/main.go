package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aluiziolira/go-nyc-airbnb/config"
	"github.com/aluiziolira/go-nyc-airbnb/snapshot"
)

func main() {
	widthDefault := 1280
	if value, ok, err := config.EnvInt("SNAPSHOT_WIDTH"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SNAPSHOT_WIDTH: %v\n", err)
		os.Exit(1)
	} else if ok {
		widthDefault = value
	}
	heightDefault := 900
	if value, ok, err := config.EnvInt("SNAPSHOT_HEIGHT"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid SNAPSHOT_HEIGHT: %v\n", err)
		os.Exit(1)
	} else if ok {
		heightDefault = value
	}
	urlDefault := "http://localhost:8050/"
	if value, ok := config.EnvString("SNAPSHOT_URL"); ok {
		urlDefault = value
	}

	target := flag.String("url", urlDefault, "Dashboard URL to capture")
	region := flag.String("region", "Any", "Region to select before capturing")
	width := flag.Int("width", widthDefault, "Browser window width")
	height := flag.Int("height", heightDefault, "Browser window height")
	timeout := flag.Duration("timeout", 60*time.Second, "Capture timeout")
	output := flag.String("output", "dashboard.png", "Output PNG path")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	image, err := snapshot.Capture(ctx, snapshot.Options{
		URL:     *target,
		Region:  *region,
		Width:   *width,
		Height:  *height,
		Timeout: *timeout,
	})
	if err != nil {
		slog.Error("snapshot failed", slog.Any("error", err))
		os.Exit(1)
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("create output directory", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if err := os.WriteFile(*output, image, 0o644); err != nil {
		slog.Error("write snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("snapshot written", slog.String("path", *output), slog.Int("bytes", len(image)))
}
