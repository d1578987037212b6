// Package main provides the retag CLI that re-applies
// the generated tag aliases to an already pushed image
// in the registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/timo-reymann/poc-base-image-manager/imagetest"
	"github.com/timo-reymann/poc-base-image-manager/registry"
)

func run() error {
	const errCtx = "retag"

	var (
		distDir     string
		settingsDir string
		craneBin    string
	)

	flag.StringVar(
		&distDir, "dist", "dist",
		"generation output directory"+
			" holding the alias files",
	)

	flag.StringVar(
		&settingsDir, "settings", ".",
		"directory containing "+registry.SettingsFile,
	)

	flag.StringVar(
		&craneBin, "crane", "",
		"crane binary (default: resolved via PATH)",
	)

	flag.Usage = func() {
		fmt.Fprintf(
			flag.CommandLine.Output(),
			"usage: %s [flags] <image:tag>\n",
			os.Args[0],
		)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()

		return fmt.Errorf(
			"%s: exactly one image:tag expected", errCtx,
		)
	}

	ref, err := imagetest.ParseTagRef(flag.Arg(0))
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	settings, err := registry.LoadSettings(settingsDir)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	err = registry.Retag(ctx, registry.RetagOptions{
		DistDir:  distDir,
		Image:    ref.Image,
		Tag:      ref.Tag,
		Registry: settings.Push(),
		Crane:    registry.Crane{Bin: craneBin},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
