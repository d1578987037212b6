// Package main provides the generate CLI that resolves
// every image configuration under the images root and
// writes the build contexts, alias files, and manifest
// into the dist directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timo-reymann/poc-base-image-manager/generate"
)

func run() error {
	const errCtx = "generate"

	var (
		imagesDir string
		distDir   string
		watch     bool
		debounce  time.Duration
	)

	flag.StringVar(
		&imagesDir, "images", "images",
		"root directory scanned for image configurations",
	)

	flag.StringVar(
		&distDir, "dist", "dist",
		"output directory (wiped on every run)",
	)

	flag.BoolVar(
		&watch, "watch", false,
		"regenerate whenever the images root changes",
	)

	flag.DurationVar(
		&debounce, "debounce", generate.DefaultDebounce,
		"delay before regenerating after a change",
	)

	flag.Parse()

	opts := generate.Options{
		ImagesDir: imagesDir,
		DistDir:   distDir,
	}

	if watch {
		ctx, stop := signal.NotifyContext(
			context.Background(),
			os.Interrupt,
			syscall.SIGTERM,
		)
		defer stop()

		if err := generate.Watch(
			ctx, opts, debounce,
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	manifest, err := generate.Run(opts)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"generation complete",
		"images", len(manifest.Images),
		"dist", distDir,
	)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
