package aliasfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Write persists an alias map into dir: one regular file
// per alias, named after the alias, whose entire content
// is the target tag name. Aliases are written in sorted
// order so repeated runs touch files identically. An
// alias whose name collides with an existing tag output
// directory is an error; aliases are a namespace layered
// over tag names and may not shadow one on disk.
func Write(dir string, aliases map[string]string) error {
	const errCtx = "writing alias files"

	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		pa := filepath.Join(dir, name)

		if st, err := os.Stat(pa); err == nil && st.IsDir() {
			return fmt.Errorf(
				"%s: alias %q collides with tag directory %s",
				errCtx, name, pa,
			)
		}

		//nolint:gosec // alias files are world-readable build outputs
		err := os.WriteFile(
			pa, []byte(aliases[name]), 0o644,
		)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return nil
}

// Read returns the target tag name of one alias file.
func Read(dir string, alias string) (string, error) {
	const errCtx = "reading alias file"

	content, err := os.ReadFile(filepath.Join(dir, alias)) //nolint:gosec // path is caller-provided by design
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return string(content), nil
}

// ForTag scans dir and returns the alias names whose
// content is exactly tag, in sorted order. Directories
// (tag outputs) are skipped.
func ForTag(dir string, tag string) ([]string, error) {
	const errCtx = "scanning alias files"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var aliases []string

	for _, en := range entries {
		if en.IsDir() {
			continue
		}

		content, err := os.ReadFile( //nolint:gosec // scanning the alias directory by design
			filepath.Join(dir, en.Name()),
		)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if string(content) == tag {
			aliases = append(aliases, en.Name())
		}
	}

	return aliases, nil
}
