// Package main provides the test CLI that manages the
// docker-in-docker sidecar and runs structure tests for
// generated images.
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
)

func run() error {
	const errCtx = "imagetest"

	var (
		distDir string
		binDir  string
	)

	flag.StringVar(
		&distDir, "dist", "dist",
		"generation output directory",
	)

	flag.StringVar(
		&binDir, "bin", "bin",
		"directory holding the"+
			" container-structure-test binaries",
	)

	flag.Usage = func() {
		fmt.Fprintf(
			flag.CommandLine.Output(),
			"usage: %s [flags] start|stop|status|"+
				"<image:tag>\n",
			os.Args[0],
		)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()

		return fmt.Errorf(
			"%s: exactly one command expected", errCtx,
		)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	dind, err := imagetest.NewDind(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		_ = dind.Close()
	}()

	switch cmd := flag.Arg(0); cmd {
	case "start":
		err = dind.Ensure(ctx)

	case "stop":
		err = dind.Stop(ctx)

	case "status":
		var running bool

		running, err = dind.IsRunning(ctx)
		if err == nil {
			slog.Info(
				"dind status",
				"name", imagetest.ContainerName,
				"running", running,
			)
		}

	default:
		var ref imagetest.TagRef

		ref, err = imagetest.ParseTagRef(cmd)
		if err == nil {
			runner := &imagetest.Runner{
				Dind:    dind,
				BinDir:  binDir,
				DistDir: distDir,
			}
			err = runner.Run(ctx, ref)
		}
	}

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
