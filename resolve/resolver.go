package resolve

import (
	"github.com/timo-reymann/poc-base-image-manager/config"
	"github.com/timo-reymann/poc-base-image-manager/merge"
)

// Resolver turns validated image configurations into
// resolved Image models. It holds only the template
// locator; Resolve itself is a pure function of its
// input and may run for independent images concurrently.
type Resolver struct {
	loc TemplateLocator
}

// NewResolver creates a Resolver that validates template
// identifiers against loc during resolution.
func NewResolver(loc TemplateLocator) *Resolver {
	return &Resolver{loc: loc}
}

// Resolve builds the complete Image model from cfg: the
// base tag list with the image -> tag cascade applied,
// one derived tag list per variant, and synthesized
// semver aliases for the base tags and for each variant.
// The first error from any step aborts resolution; no
// partial Image is ever returned.
func (r *Resolver) Resolve(
	cfg *config.ImageConfig,
) (*Image, error) {
	baseTags, err := r.resolveBaseTags(cfg)
	if err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(cfg.Variants))

	for _, vc := range cfg.Variants {
		derived, err := r.deriveVariantTags(
			cfg.Name, baseTags, vc,
		)
		if err != nil {
			return nil, err
		}

		if err := checkUnique(
			cfg.Name, vc.Name, derived,
		); err != nil {
			return nil, err
		}

		variants = append(variants, Variant{
			Name:    vc.Name,
			Suffix:  vc.TagSuffix,
			Tags:    derived,
			Aliases: GenerateSemverAliases(derived),
		})
	}

	// Explicit config aliases override generated ones,
	// consistent with the merge cascade.
	aliases := merge.Merge(
		GenerateSemverAliases(baseTags),
		cfg.Aliases,
	)

	return &Image{
		Name:        cfg.Name,
		Dir:         cfg.Dir,
		IsBaseImage: cfg.IsBaseImage,
		Extends:     cfg.Extends,
		Versions:    cfg.Versions,
		Variables:   cfg.Variables,
		Tags:        baseTags,
		Variants:    variants,
		Aliases:     aliases,
	}, nil
}

// resolveBaseTags applies the image -> tag cascade and
// template discovery to every configured tag, in
// declaration order.
func (r *Resolver) resolveBaseTags(
	cfg *config.ImageConfig,
) ([]Tag, error) {
	tags := make([]Tag, 0, len(cfg.Tags))

	for _, tc := range cfg.Tags {
		explicit := tc.Template
		if explicit == "" {
			explicit = cfg.Template
		}

		tmpl, tried := resolveTemplate(
			r.loc, explicit, "",
		)
		if tmpl == "" {
			return nil, &TemplateNotFoundError{
				Image: cfg.Name,
				Tag:   tc.Name,
				Tried: tried,
			}
		}

		tags = append(tags, Tag{
			Name:     tc.Name,
			Versions: merge.Merge(
				cfg.Versions, tc.Versions,
			),
			Variables: merge.Merge(
				cfg.Variables, tc.Variables,
			),
			Template: tmpl,
			RootfsUser: firstNonEmpty(
				tc.RootfsUser,
				cfg.RootfsUser,
				"0:0",
			),
			RootfsCopy: boolOverride(
				boolOverride(true, cfg.RootfsCopy),
				tc.RootfsCopy,
			),
		})
	}

	if err := checkUnique(cfg.Name, "", tags); err != nil {
		return nil, err
	}

	return tags, nil
}

// checkUnique enforces tag-name uniqueness within one
// list (base tags or one variant's derived tags).
func checkUnique(
	imageName string,
	variantName string,
	tags []Tag,
) error {
	seen := make(map[string]struct{}, len(tags))

	for _, tag := range tags {
		if _, dup := seen[tag.Name]; dup {
			return &DuplicateTagNameError{
				Image:   imageName,
				Variant: variantName,
				Tag:     tag.Name,
			}
		}

		seen[tag.Name] = struct{}{}
	}

	return nil
}
