// Package main provides the sbom CLI that generates a
// software bill of materials for a built image tarball.
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

	"github.com/timo-reymann/poc-base-image-manager/imagetest"
	"github.com/timo-reymann/poc-base-image-manager/sbom"
)

func run() error {
	const errCtx = "sbom"

	var (
		distDir string
		format  string
		bin     string
	)

	flag.StringVar(
		&distDir, "dist", "dist",
		"generation output directory",
	)

	flag.StringVar(
		&format, "format", sbom.DefaultFormat,
		"sbom output format",
	)

	flag.StringVar(
		&bin, "syft", "",
		"syft binary (default: resolved via PATH)",
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

	tar := imagetest.FindImageTar(distDir, ref)
	if tar == "" {
		return fmt.Errorf(
			"%s: no image tar for %s under %s",
			errCtx, ref, distDir,
		)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	gen := sbom.Generator{Bin: bin}

	outPath, err := gen.Generate(ctx, tar, format)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"sbom written",
		"image", ref.String(),
		"path", filepath.Clean(outPath),
	)

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
