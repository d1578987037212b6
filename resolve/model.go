package resolve

// Tag is a named, fully-resolved build target. Versions
// and variables carry the final merged values; nothing
// downstream re-merges.
type Tag struct {
	// Name is unique within the owning Image's base tag
	// list (and, suffixed, within a variant's list).
	Name string

	// Versions is the merged versions mapping.
	Versions map[string]string

	// Variables is the merged variables mapping.
	Variables map[string]string

	// Template is the resolved template identifier,
	// relative to the image's template namespace.
	Template string

	// RootfsUser is the owner used when the renderer
	// injects the rootfs COPY instruction.
	RootfsUser string

	// RootfsCopy disables rootfs injection when false.
	RootfsCopy bool
}

// Variant is a named transformation applied to all base
// tags of an image.
type Variant struct {
	Name string

	// Suffix is appended to every derived tag name.
	Suffix string

	// Tags are the derived tags, one per base tag, in
	// base declaration order.
	Tags []Tag

	// Aliases maps suffixed alias names to suffixed
	// target tag names.
	Aliases map[string]string
}

// Image is the resolved model handed whole to the
// renderer. It is constructed once per resolution pass
// and never mutated afterwards.
type Image struct {
	Name string

	// Dir is the image's configuration directory,
	// carried through for the renderer.
	Dir string

	// IsBaseImage marks images other images may extend.
	IsBaseImage bool

	// Extends names the image (or image:tag reference)
	// this image builds on, empty for roots.
	Extends string

	// References lists the base images the templates
	// name through base_image placeholders. Populated
	// from the template contents after resolution; the
	// resolver itself never reads template bodies.
	References []string

	// Versions and Variables are the image-level
	// mappings, kept for render context; tags already
	// carry the merged result.
	Versions  map[string]string
	Variables map[string]string

	Tags     []Tag
	Variants []Variant

	// Aliases maps alias names (e.g. "9", "9.0") to
	// base tag names. Aliases are a namespace layered
	// over tag names, not build targets.
	Aliases map[string]string
}
