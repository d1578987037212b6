package resolve

import (
	"fmt"
	"strings"
)

// TemplateNotFoundError reports that no template
// identifier could be resolved through the discovery
// order for a tag.
type TemplateNotFoundError struct {
	// Image, Tag and Variant identify where discovery
	// failed. Variant is empty for base tags.
	Image   string
	Tag     string
	Variant string

	// Tried lists the identifiers probed, in order.
	Tried []string
}

func (e *TemplateNotFoundError) Error() string {
	loc := fmt.Sprintf("image %q tag %q", e.Image, e.Tag)
	if e.Variant != "" {
		loc += fmt.Sprintf(" variant %q", e.Variant)
	}

	return fmt.Sprintf(
		"no template found for %s (tried %s)",
		loc, strings.Join(e.Tried, ", "),
	)
}

// DuplicateTagNameError reports two tags sharing a name
// after resolution, either in the base tag list or
// within one variant's derived list.
type DuplicateTagNameError struct {
	Image   string
	Variant string
	Tag     string
}

func (e *DuplicateTagNameError) Error() string {
	if e.Variant != "" {
		return fmt.Sprintf(
			"duplicate tag name %q in variant %q of image %q",
			e.Tag, e.Variant, e.Image,
		)
	}

	return fmt.Sprintf(
		"duplicate tag name %q in image %q",
		e.Tag, e.Image,
	)
}
