package generate

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of filesystem events
// (editor save dances, rootfs copies) into one
// regeneration.
const DefaultDebounce = 300 * time.Millisecond

// Watch runs one generation pass, then regenerates
// whenever something under opts.ImagesDir changes. New
// subdirectories are picked up as they appear. The call
// blocks until ctx is canceled; generation errors are
// logged and the watch keeps going so a broken edit can
// be fixed without restarting.
func Watch(
	ctx context.Context,
	opts Options,
	debounce time.Duration,
) error {
	const errCtx = "watching images directory"

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err := watchTree(
		watcher, opts.ImagesDir,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	runLogged(opts)

	timer := time.NewTimer(debounce)

	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op.Has(fsnotify.Create) {
				if dirExists(event.Name) {
					_ = watcher.Add(event.Name)
				}
			}

			slog.Debug(
				"change detected",
				"path", event.Name,
				"op", event.Op.String(),
			)
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			slog.Warn("watch error", "error", err)

		case <-timer.C:
			runLogged(opts)
		}
	}
}

func runLogged(opts Options) {
	if _, err := Run(opts); err != nil {
		slog.Error("generation failed", "error", err)

		return
	}

	slog.Info("generation complete")
}

// watchTree registers the root and every existing
// subdirectory; fsnotify watches are not recursive.
func watchTree(
	watcher *fsnotify.Watcher,
	root string,
) error {
	return filepath.WalkDir(
		root,
		func(
			path string,
			d fs.DirEntry,
			err error,
		) error {
			if err != nil {
				return err
			}

			if !d.IsDir() {
				return nil
			}

			return watcher.Add(path)
		},
	)
}
