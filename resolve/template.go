package resolve

import "fmt"

// TemplateLocator reports whether a template identifier
// exists in the renderer's namespace. Resolution checks
// identifiers eagerly through this capability, so a
// broken config fails at resolve time instead of render
// time. Tests inject MapLocator; production code uses a
// directory-backed implementation.
//
// Pattern: Strategy -- swap the template namespace
// without changing discovery logic.
type TemplateLocator interface {
	Exists(name string) bool
}

// MapLocator is an in-memory TemplateLocator. The map
// keys are the identifiers that exist.
type MapLocator map[string]bool

// Exists reports whether name is present in the map.
func (m MapLocator) Exists(name string) bool {
	return m[name]
}

// DefaultTemplate is the conventional template
// identifier used when nothing more specific resolves.
const DefaultTemplate = "Dockerfile.tmpl"

// VariantTemplate returns the conventional identifier
// probed for a variant before falling back to
// DefaultTemplate.
func VariantTemplate(variantName string) string {
	return fmt.Sprintf("Dockerfile.%s.tmpl", variantName)
}

// resolveTemplate applies the discovery order: an
// explicit identifier is used verbatim (and must exist),
// otherwise the variant convention is probed when
// variantName is set, otherwise the default convention.
// It returns the chosen identifier, or the probed
// candidates when none exists.
func resolveTemplate(
	loc TemplateLocator,
	explicit string,
	variantName string,
) (string, []string) {
	if explicit != "" {
		if loc.Exists(explicit) {
			return explicit, nil
		}

		return "", []string{explicit}
	}

	var tried []string

	if variantName != "" {
		cand := VariantTemplate(variantName)
		if loc.Exists(cand) {
			return cand, nil
		}

		tried = append(tried, cand)
	}

	if loc.Exists(DefaultTemplate) {
		return DefaultTemplate, nil
	}

	return "", append(tried, DefaultTemplate)
}
