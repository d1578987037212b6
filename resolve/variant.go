package resolve

import (
	"github.com/timo-reymann/poc-base-image-manager/config"
	"github.com/timo-reymann/poc-base-image-manager/merge"
)

// deriveVariantTags produces one derived tag per base
// tag, preserving declaration order. Every base tag is
// inherited; a variant never selects a subset. Each
// derived tag appends the variant suffix to the base
// name and layers the variant-level versions and
// variables on top of the (already image+tag merged)
// base values.
func (r *Resolver) deriveVariantTags(
	imageName string,
	baseTags []Tag,
	vc config.VariantConfig,
) ([]Tag, error) {
	derived := make([]Tag, 0, len(baseTags))

	for _, base := range baseTags {
		name := base.Name + vc.TagSuffix

		tmpl, tried := resolveTemplate(
			r.loc, vc.Template, vc.Name,
		)
		if tmpl == "" {
			return nil, &TemplateNotFoundError{
				Image:   imageName,
				Tag:     name,
				Variant: vc.Name,
				Tried:   tried,
			}
		}

		derived = append(derived, Tag{
			Name:     name,
			Versions: merge.Merge(
				base.Versions, vc.Versions,
			),
			Variables: merge.Merge(
				base.Variables, vc.Variables,
			),
			Template: tmpl,
			RootfsUser: firstNonEmpty(
				vc.RootfsUser, base.RootfsUser,
			),
			RootfsCopy: boolOverride(
				base.RootfsCopy, vc.RootfsCopy,
			),
		})
	}

	return derived, nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

// boolOverride applies an optional override on top of an
// inherited value.
func boolOverride(inherited bool, override *bool) bool {
	if override != nil {
		return *override
	}

	return inherited
}
