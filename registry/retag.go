package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/timo-reymann/poc-base-image-manager/aliasfile"
)

// RetagOptions configures one retag run.
type RetagOptions struct {
	// DistDir is the generation output directory
	// holding the per-image alias files.
	DistDir string

	// Image and Tag name the existing registry tag the
	// aliases should be re-applied to.
	Image string
	Tag   string

	// Registry is the target registry.
	Registry Registry

	// Crane drives the external registry tooling.
	Crane Crane
}

// Retag re-applies every alias computed for a tag: it
// confirms the tag exists in the registry via a remote
// digest lookup, reads the alias files pointing at it,
// and creates one remote tag per alias. The alias files
// are the source of truth written by the generation
// step; nothing is re-derived here.
func Retag(
	ctx context.Context,
	opts RetagOptions,
) error {
	const errCtx = "retagging image"

	if err := opts.Crane.Login(
		ctx, opts.Registry,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ref := fmt.Sprintf(
		"%s/%s:%s",
		opts.Registry.URL, opts.Image, opts.Tag,
	)

	dig, err := opts.Crane.Digest(ctx, ref)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"confirmed tag",
		"ref", ref,
		"digest", dig.String(),
	)

	aliases, err := aliasfile.ForTag(
		filepath.Join(opts.DistDir, opts.Image),
		opts.Tag,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if len(aliases) == 0 {
		slog.Info(
			"no aliases point at tag",
			"image", opts.Image,
			"tag", opts.Tag,
		)

		return nil
	}

	for _, alias := range aliases {
		if err := opts.Crane.Tag(
			ctx, ref, alias,
		); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		slog.Info(
			"applied alias",
			"ref", ref,
			"alias", alias,
		)
	}

	return nil
}
