package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"

	"github.com/timo-reymann/poc-base-image-manager/aliasfile"
	"github.com/timo-reymann/poc-base-image-manager/config"
	"github.com/timo-reymann/poc-base-image-manager/depgraph"
	"github.com/timo-reymann/poc-base-image-manager/merge"
	"github.com/timo-reymann/poc-base-image-manager/render"
	"github.com/timo-reymann/poc-base-image-manager/resolve"
)

// ManifestFileName is the machine-readable summary
// written alongside the generated build contexts.
const ManifestFileName = "manifest.json"

// RootfsDirName is the conventional overlay directory
// inside an image's configuration directory. When
// present it is copied into every generated build
// context.
const RootfsDirName = "rootfs"

// Options configure a generation run.
type Options struct {
	// ImagesDir is the root scanned for image
	// configuration files.
	ImagesDir string

	// DistDir is the output directory. It is wiped and
	// recreated on every run.
	DistDir string
}

// ManifestImage is the per-image entry of the generation
// manifest.
type ManifestImage struct {
	Name        string            `json:"name"`
	IsBaseImage bool              `json:"is_base_image"`
	Extends     string            `json:"extends,omitempty"`
	Tags        []string          `json:"tags"`
	Aliases     map[string]string `json:"aliases,omitempty"`
}

// Manifest summarizes a generation run. Images appear in
// build order.
type Manifest struct {
	Images []ManifestImage `json:"images"`
}

// Run performs one full generation pass: it discovers
// every image configuration under opts.ImagesDir,
// resolves each against its own directory, orders the
// results by their dependencies, and writes one build
// context per tag plus the alias files and the manifest
// into opts.DistDir. Resolution happens before the old
// output is wiped, so a broken configuration leaves the
// previous dist intact.
func Run(opts Options) (*Manifest, error) {
	const errCtx = "generating build contexts"

	configs, err := config.Discover(opts.ImagesDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	images := make([]*resolve.Image, 0, len(configs))

	for _, cfg := range configs {
		resolver := resolve.NewResolver(
			render.DirLocator{Dir: cfg.Dir},
		)

		img, err := resolver.Resolve(cfg)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		refs, err := templateReferences(img)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		img.References = refs

		images = append(images, img)
	}

	baseImages := baseImageRefs(images)

	for _, img := range images {
		for _, ref := range img.References {
			if _, ok := baseImages[ref]; !ok {
				return nil, fmt.Errorf(
					"%s: could not resolve base image"+
						" %q referenced by %s",
					errCtx, ref, img.Name,
				)
			}
		}
	}

	ordered, err := depgraph.Sort(images)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := resetDist(opts.DistDir); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	manifest := &Manifest{
		Images: make(
			[]ManifestImage, 0, len(ordered),
		),
	}

	for i, img := range ordered {
		slog.Info(
			"generating image",
			"image", img.Name,
			"order", i+1,
		)

		entry, err := generateImage(
			opts.DistDir, img, baseImages,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		manifest.Images = append(
			manifest.Images, *entry,
		)
	}

	if err := writeManifest(
		opts.DistDir, manifest,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return manifest, nil
}

// generateImage writes all build contexts and alias
// files for one resolved image under distDir/<name>/.
func generateImage(
	distDir string,
	img *resolve.Image,
	baseImages map[string]string,
) (*ManifestImage, error) {
	imageDir := filepath.Join(distDir, img.Name)
	if err := os.MkdirAll(imageDir, 0o750); err != nil {
		return nil, err
	}

	hasRootfs := dirExists(
		filepath.Join(img.Dir, RootfsDirName),
	)

	entry := &ManifestImage{
		Name:        img.Name,
		IsBaseImage: img.IsBaseImage,
		Extends:     img.Extends,
	}

	for _, tag := range img.Tags {
		if err := writeContext(
			imageDir, img, tag, nil,
			hasRootfs, baseImages,
		); err != nil {
			return nil, err
		}

		entry.Tags = append(entry.Tags, tag.Name)
	}

	aliases := img.Aliases

	for v := range img.Variants {
		variant := &img.Variants[v]

		for _, tag := range variant.Tags {
			if err := writeContext(
				imageDir, img, tag, variant,
				hasRootfs, baseImages,
			); err != nil {
				return nil, err
			}

			entry.Tags = append(entry.Tags, tag.Name)
		}

		aliases = merge.Merge(aliases, variant.Aliases)
	}

	if err := aliasfile.Write(
		imageDir, aliases,
	); err != nil {
		return nil, err
	}

	entry.Aliases = aliases

	return entry, nil
}

// writeContext renders one tag's Dockerfile and, when
// the image carries a test template, its test config,
// into distDir/<image>/<tag>/. A present rootfs/ overlay
// is copied into the context so the injected COPY
// instruction has its source available at build time.
func writeContext(
	imageDir string,
	img *resolve.Image,
	tag resolve.Tag,
	variant *resolve.Variant,
	hasRootfs bool,
	baseImages map[string]string,
) error {
	tagDir := filepath.Join(imageDir, tag.Name)
	if err := os.MkdirAll(tagDir, 0o750); err != nil {
		return err
	}

	ctx := render.Context{
		Image:      img,
		Tag:        tag,
		Variant:    variant,
		HasRootfs:  hasRootfs,
		BaseImages: baseImages,
	}

	dockerfile, err := ctx.Dockerfile()
	if err != nil {
		return err
	}

	if err := os.WriteFile(
		filepath.Join(tagDir, "Dockerfile"),
		[]byte(dockerfile),
		0o644, //nolint:gosec // build inputs, not secrets
	); err != nil {
		return err
	}

	testConfig, err := ctx.TestConfig()

	switch {
	case err == nil:
		if err := os.WriteFile(
			filepath.Join(tagDir, "test.yml"),
			[]byte(testConfig),
			0o644, //nolint:gosec // build inputs, not secrets
		); err != nil {
			return err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	if hasRootfs {
		if err := copyTree(
			filepath.Join(img.Dir, RootfsDirName),
			filepath.Join(tagDir, RootfsDirName),
		); err != nil {
			return err
		}
	}

	return nil
}

func resetDist(distDir string) error {
	if err := os.RemoveAll(distDir); err != nil {
		return err
	}

	return os.MkdirAll(distDir, 0o750)
}

func writeManifest(
	distDir string,
	manifest *Manifest,
) error {
	raw, err := json.MarshalIndent(
		manifest, "", "  ",
	)
	if err != nil {
		return err
	}

	return os.WriteFile(
		filepath.Join(distDir, ManifestFileName),
		raw,
		0o644, //nolint:gosec // build metadata, not secrets
	)
}

// templateReferences scans every template body an image
// renders from and collects the base-image names they
// reference. The result feeds both the dependency graph
// and the reference validation before rendering starts.
func templateReferences(
	img *resolve.Image,
) ([]string, error) {
	templates := make(map[string]struct{})
	for _, tag := range img.Tags {
		templates[tag.Template] = struct{}{}
	}

	for _, variant := range img.Variants {
		for _, tag := range variant.Tags {
			templates[tag.Template] = struct{}{}
		}
	}

	seen := make(map[string]struct{})

	for tpl := range templates {
		raw, err := os.ReadFile( //nolint:gosec // template path comes from the resolved model
			filepath.Join(img.Dir, tpl),
		)
		if err != nil {
			return nil, err
		}

		for _, name := range render.BaseImageRefs(
			string(raw),
		) {
			seen[name] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, nil
	}

	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}

	sort.Strings(refs)

	return refs, nil
}

// baseImageRefs maps every base image in the set to the
// reference substituted for its name.
func baseImageRefs(
	images []*resolve.Image,
) map[string]string {
	refs := make(map[string]string)

	for _, img := range images {
		if img.IsBaseImage {
			refs[img.Name] = render.BaseImageRef(img)
		}
	}

	return refs
}

func dirExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// copyTree duplicates a directory tree, preserving the
// regular-file permission bits. Symlinks are not
// followed; rootfs overlays are expected to hold plain
// files.
func copyTree(src string, dst string) error {
	return filepath.WalkDir(
		src,
		func(
			path string,
			d fs.DirEntry,
			err error,
		) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(src, path)
			if err != nil {
				return err
			}

			target := filepath.Join(dst, rel)

			if d.IsDir() {
				return os.MkdirAll(target, 0o750)
			}

			info, err := d.Info()
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(path) //nolint:gosec // walking the configured overlay tree
			if err != nil {
				return err
			}

			return os.WriteFile(
				target, raw, info.Mode().Perm(),
			)
		},
	)
}
