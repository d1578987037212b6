// Package aliasfile persists computed tag aliases as plain files: one
// directory per image, one regular file per alias, where the filename is
// the alias name and the file content is the exact target tag string.
// The retag flow later reads these files back to answer "which aliases
// point at tag X".
package aliasfile
