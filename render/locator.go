package render

import (
	"os"
	"path/filepath"
)

// DirLocator resolves template identifiers against a
// directory on disk. It is the production
// resolve.TemplateLocator: an identifier exists when a
// regular file of that name is present in Dir.
type DirLocator struct {
	Dir string
}

// Exists reports whether name is a regular file in Dir.
func (d DirLocator) Exists(name string) bool {
	st, err := os.Stat(filepath.Join(d.Dir, name))

	return err == nil && st.Mode().IsRegular()
}
