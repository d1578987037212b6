// Package generate orchestrates a full generation pass:
// discovery, resolution, dependency ordering, rendering,
// alias files, and the manifest. It is the only package
// that writes to the dist directory; everything below it
// is pure with respect to the output tree.
package generate
