package render

import (
	"regexp"
	"sort"

	"github.com/timo-reymann/poc-base-image-manager/resolve"
)

// baseImageKey prefixes placeholders that resolve a
// named base image, e.g. {{base_image:python}}.
const baseImageKey = "base_image:"

var baseImageRefPattern = regexp.MustCompile(
	`\{\{base_image:([^}]+)\}\}`,
)

// BaseImageRefs returns the base-image names a template
// body references through named base_image placeholders,
// sorted and deduplicated.
func BaseImageRefs(template string) []string {
	matches := baseImageRefPattern.FindAllStringSubmatch(
		template, -1,
	)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		seen[match[1]] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// BaseImageRef returns the reference substituted for a
// named base image: the explicit "latest" alias target
// when one is configured, otherwise the last declared
// base tag.
func BaseImageRef(img *resolve.Image) string {
	if target, ok := img.Aliases["latest"]; ok {
		return img.Name + ":" + target
	}

	if len(img.Tags) == 0 {
		return img.Name
	}

	last := img.Tags[len(img.Tags)-1]

	return img.Name + ":" + last.Name
}
