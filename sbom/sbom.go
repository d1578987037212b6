package sbom

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/timo-reymann/poc-base-image-manager/exec"
)

// DefaultFormat is used when the caller does not pick
// one.
const DefaultFormat = "cyclonedx-json"

// extensions maps supported syft output formats to the
// file extension of the generated document.
var extensions = map[string]string{
	"spdx-json":      "spdx.json",
	"cyclonedx-json": "cyclonedx.json",
	"cyclonedx":      "cyclonedx.xml",
	"spdx":           "spdx",
	"json":           "syft.json",
}

// UnsupportedFormatError is returned for formats syft
// does not emit.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf(
		"unsupported sbom format %q", e.Format,
	)
}

// OutputPath returns the document path for an image
// tarball's SBOM: the tarball's directory plus
// "sbom.<extension>" for the format.
func OutputPath(
	tarPath string,
	format string,
) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", &UnsupportedFormatError{
			Format: format,
		}
	}

	return filepath.Join(
		filepath.Dir(tarPath),
		"sbom."+ext,
	), nil
}

// Generator produces SBOM documents with the syft CLI.
type Generator struct {
	// Bin is the syft binary, "syft" resolves via PATH.
	Bin string
}

func (g Generator) bin() string {
	if g.Bin == "" {
		return "syft"
	}

	return g.Bin
}

// Generate scans an image tarball and writes the SBOM
// document next to it, returning the document path.
func (g Generator) Generate(
	ctx context.Context,
	tarPath string,
	format string,
) (string, error) {
	const errCtx = "generating sbom"

	outPath, err := OutputPath(tarPath, format)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Info(
		"generating sbom",
		"tar", tarPath,
		"format", format,
		"output", outPath,
	)

	out, err := exec.Ex(
		ctx,
		"",
		nil,
		g.bin(),
		"scan",
		"docker-archive:"+tarPath,
		"-o", format+"="+outPath,
	)
	if err != nil {
		return "", fmt.Errorf(
			"%s: %w: %s", errCtx, err, out,
		)
	}

	return outPath, nil
}
