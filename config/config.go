package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// FileName is the per-image configuration file name
// looked up by Discover.
const FileName = "image.yml"

// TagConfig describes a single buildable tag of an
// image. Versions and variables override the image-level
// values key-wise.
type TagConfig struct {
	Name       string            `yaml:"name"`
	Template   string            `yaml:"template"`
	Versions   map[string]string `yaml:"versions"`
	Variables  map[string]string `yaml:"variables"`
	RootfsUser string            `yaml:"rootfs_user"`
	RootfsCopy *bool             `yaml:"rootfs_copy"`
}

// VariantConfig describes a transformation applied to
// every base tag of an image: the suffix is appended to
// each tag name and the variant-level versions and
// variables are layered on top of the tag-level result.
type VariantConfig struct {
	Name       string            `yaml:"name"`
	TagSuffix  string            `yaml:"tag_suffix"`
	Template   string            `yaml:"template"`
	Versions   map[string]string `yaml:"versions"`
	Variables  map[string]string `yaml:"variables"`
	RootfsUser string            `yaml:"rootfs_user"`
	RootfsCopy *bool             `yaml:"rootfs_copy"`
}

// ImageConfig is the root of a validated image.yml tree.
type ImageConfig struct {
	Name        string            `yaml:"name"`
	Template    string            `yaml:"template"`
	Versions    map[string]string `yaml:"versions"`
	Variables   map[string]string `yaml:"variables"`
	Tags        []TagConfig       `yaml:"tags"`
	Variants    []VariantConfig   `yaml:"variants"`
	IsBaseImage bool              `yaml:"is_base_image"`
	Extends     string            `yaml:"extends"`
	Aliases     map[string]string `yaml:"aliases"`
	RootfsUser  string            `yaml:"rootfs_user"`
	RootfsCopy  *bool             `yaml:"rootfs_copy"`

	// Dir is the directory the image.yml was loaded
	// from. Set by Load, never by YAML.
	Dir string `yaml:"-"`
}

// ValidationError reports a structural problem in an
// image.yml file.
type ValidationError struct {
	// Path is the file the config was loaded from
	// (empty when validating an in-memory config).
	Path string

	// Field names the offending field.
	Field string

	// Reason describes the violation.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf(
			"invalid config: %s: %s",
			e.Field, e.Reason,
		)
	}

	return fmt.Sprintf(
		"invalid config %s: %s: %s",
		e.Path, e.Field, e.Reason,
	)
}

// Load reads an image.yml file, unmarshals it into the
// typed tree, and runs the validation pass. When the
// config has no explicit name the directory name is
// used. The returned config is the only place schema
// validation happens; downstream consumers assume a
// valid tree.
func Load(path string) (*ImageConfig, error) {
	const errCtx = "loading image config"

	raw, err := os.ReadFile(path) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var cfg ImageConfig

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf(
			"%s: parsing %s: %w", errCtx, path, err,
		)
	}

	cfg.Dir = filepath.Dir(path)

	if cfg.Name == "" {
		cfg.Name = filepath.Base(cfg.Dir)
	}

	if err := cfg.Validate(path); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return &cfg, nil
}

// Validate checks the structural rules of the tree and
// returns the first violation as a *ValidationError.
// path is only used for error context and may be empty.
func (c *ImageConfig) Validate(path string) error {
	if c.Name == "" {
		return &ValidationError{
			Path:   path,
			Field:  "name",
			Reason: "image name is required",
		}
	}

	if len(c.Tags) == 0 {
		return &ValidationError{
			Path:   path,
			Field:  "tags",
			Reason: "at least one tag is required",
		}
	}

	seenTags := make(map[string]struct{}, len(c.Tags))

	for idx, tc := range c.Tags {
		if tc.Name == "" {
			return &ValidationError{
				Path:  path,
				Field: fmt.Sprintf("tags[%d].name", idx),
				Reason: "tag name must not be " +
					"empty",
			}
		}

		if _, dup := seenTags[tc.Name]; dup {
			return &ValidationError{
				Path:  path,
				Field: fmt.Sprintf("tags[%d].name", idx),
				Reason: fmt.Sprintf(
					"duplicate tag name %q",
					tc.Name,
				),
			}
		}

		seenTags[tc.Name] = struct{}{}
	}

	seenVariants := make(
		map[string]struct{}, len(c.Variants),
	)

	for idx, vc := range c.Variants {
		if vc.Name == "" {
			return &ValidationError{
				Path: path,
				Field: fmt.Sprintf(
					"variants[%d].name", idx,
				),
				Reason: "variant name must not be " +
					"empty",
			}
		}

		if vc.TagSuffix == "" {
			return &ValidationError{
				Path: path,
				Field: fmt.Sprintf(
					"variants[%d].tag_suffix", idx,
				),
				Reason: "variant tag_suffix must " +
					"not be empty",
			}
		}

		if _, dup := seenVariants[vc.Name]; dup {
			return &ValidationError{
				Path: path,
				Field: fmt.Sprintf(
					"variants[%d].name", idx,
				),
				Reason: fmt.Sprintf(
					"duplicate variant name %q",
					vc.Name,
				),
			}
		}

		seenVariants[vc.Name] = struct{}{}
	}

	return nil
}

// Discover walks root looking for image.yml files and
// loads each one. Results come back in lexical path
// order, so repeated runs discover images in the same
// order.
func Discover(root string) ([]*ImageConfig, error) {
	const errCtx = "discovering image configs"

	var configs []*ImageConfig

	err := filepath.WalkDir(
		root,
		func(path string, de fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if de.IsDir() || de.Name() != FileName {
				return nil
			}

			cfg, err := Load(path)
			if err != nil {
				return err
			}

			configs = append(configs, cfg)

			return nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return configs, nil
}
