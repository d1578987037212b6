package imagetest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/timo-reymann/poc-base-image-manager/exec"
)

// TestConfigFileName is the rendered structure-test
// definition inside a generated build context.
const TestConfigFileName = "test.yml"

// ImageTarFileName is the optional saved image tarball
// inside a generated build context.
const ImageTarFileName = "image.tar"

// TagRef is a parsed "image:tag" reference.
type TagRef struct {
	Image string
	Tag   string
}

// ParseTagRef splits an "image:tag" argument. Both parts
// must be non-empty.
func ParseTagRef(ref string) (TagRef, error) {
	image, tag, found := strings.Cut(ref, ":")
	if !found || image == "" || tag == "" {
		return TagRef{}, fmt.Errorf(
			"invalid reference %q:"+
				" expected image:tag", ref,
		)
	}

	return TagRef{Image: image, Tag: tag}, nil
}

func (r TagRef) String() string {
	return r.Image + ":" + r.Tag
}

// DistPath returns the build-context directory for a
// tag.
func DistPath(distDir string, ref TagRef) string {
	return filepath.Join(distDir, ref.Image, ref.Tag)
}

// FindTestConfig returns the rendered test config for a
// tag, or an error when the generation step produced
// none.
func FindTestConfig(
	distDir string,
	ref TagRef,
) (string, error) {
	pa := filepath.Join(
		DistPath(distDir, ref), TestConfigFileName,
	)

	if _, err := os.Stat(pa); err != nil {
		return "", fmt.Errorf(
			"no test config for %s: %w", ref, err,
		)
	}

	return pa, nil
}

// FindImageTar returns the saved image tarball for a
// tag, or empty when the build step did not export one.
func FindImageTar(distDir string, ref TagRef) string {
	pa := filepath.Join(
		DistPath(distDir, ref), ImageTarFileName,
	)

	if _, err := os.Stat(pa); err != nil {
		return ""
	}

	return pa
}

// BinPath returns the container-structure-test binary
// for the current platform: binDir holds one
// <os>-<arch>/ subdirectory per supported platform, each
// with a checked-in binary, so test runs do not depend
// on a network fetch.
func BinPath(binDir string) string {
	return binPathFor(
		binDir, runtime.GOOS, runtime.GOARCH,
	)
}

func binPathFor(
	binDir string,
	goos string,
	goarch string,
) string {
	return filepath.Join(
		binDir,
		goos+"-"+goarch,
		"container-structure-test",
	)
}

// Runner executes structure tests against the dind
// daemon.
type Runner struct {
	// Dind is the sidecar manager; started on demand.
	Dind *Dind

	// BinDir holds the per-platform structure-test
	// binaries.
	BinDir string

	// DistDir is the generation output directory.
	DistDir string
}

// Run tests one tag: it ensures the sidecar is up, loads
// the tag's image tarball when present, and invokes
// container-structure-test against the sidecar daemon.
func (r *Runner) Run(
	ctx context.Context,
	ref TagRef,
) error {
	const errCtx = "running structure tests"

	testConfig, err := FindTestConfig(r.DistDir, ref)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := r.Dind.Ensure(ctx); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if tar := FindImageTar(r.DistDir, ref); tar != "" {
		if err := r.Dind.LoadTar(ctx, tar); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	slog.Info(
		"testing image",
		"image", ref.String(),
		"config", testConfig,
	)

	out, err := exec.Ex(
		ctx,
		"",
		[]string{"DOCKER_HOST=" + DaemonHost},
		BinPath(r.BinDir),
		"test",
		"--image", ref.String(),
		"--config", testConfig,
	)
	if err != nil {
		return fmt.Errorf(
			"%s: %w: %s", errCtx, err, out,
		)
	}

	return nil
}
