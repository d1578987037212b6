package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/timo-reymann/poc-base-image-manager/resolve"
)

// CyclicDependencyError reports a dependency cycle
// between images. Cycle lists the images still waiting
// on each other, sorted by name.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf(
		"cyclic dependency between images: %s",
		strings.Join(e.Cycle, ", "),
	)
}

// Dependencies maps each image name to the names of the
// images it builds on: the extends reference plus any
// base images the templates name. Only references to
// images present in the input count; an extends pointing
// outside the set (e.g. an upstream registry image) is
// not a local dependency. A tag suffix on the extends
// reference ("base:2025.9") is ignored for graph
// purposes. Each dependency list is sorted and free of
// duplicates.
func Dependencies(
	images []*resolve.Image,
) map[string][]string {
	known := make(map[string]struct{}, len(images))
	for _, img := range images {
		known[img.Name] = struct{}{}
	}

	deps := make(map[string][]string, len(images))

	for _, img := range images {
		deps[img.Name] = nil

		seen := make(map[string]struct{})

		if img.Extends != "" {
			name, _, _ := strings.Cut(img.Extends, ":")
			seen[name] = struct{}{}
		}

		for _, name := range img.References {
			seen[name] = struct{}{}
		}

		for name := range seen {
			if _, ok := known[name]; ok &&
				name != img.Name {
				deps[img.Name] = append(
					deps[img.Name], name,
				)
			}
		}

		sort.Strings(deps[img.Name])
	}

	return deps
}

// Sort returns the images in build order: every image
// comes after the images it depends on. Within one rank the
// order is lexical by name, so the result is fully
// deterministic. A cycle yields a
// *CyclicDependencyError.
func Sort(
	images []*resolve.Image,
) ([]*resolve.Image, error) {
	byName := make(
		map[string]*resolve.Image, len(images),
	)
	for _, img := range images {
		byName[img.Name] = img
	}

	deps := Dependencies(images)

	pending := make([]string, 0, len(images))
	for name := range deps {
		pending = append(pending, name)
	}

	sort.Strings(pending)

	done := make(map[string]struct{}, len(images))
	sorted := make([]*resolve.Image, 0, len(images))

	for len(pending) > 0 {
		progressed := false
		remaining := pending[:0]

		for _, name := range pending {
			if ready(deps[name], done) {
				done[name] = struct{}{}
				sorted = append(sorted, byName[name])
				progressed = true

				continue
			}

			remaining = append(remaining, name)
		}

		if !progressed {
			cycle := append([]string(nil), remaining...)
			sort.Strings(cycle)

			return nil, &CyclicDependencyError{
				Cycle: cycle,
			}
		}

		pending = remaining
	}

	return sorted, nil
}

// ready reports whether all dependencies are resolved.
func ready(
	deps []string,
	done map[string]struct{},
) bool {
	for _, dep := range deps {
		if _, ok := done[dep]; !ok {
			return false
		}
	}

	return true
}
