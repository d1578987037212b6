// Package resolve transforms a validated image configuration tree into a
// fully-resolved, render-ready Image model. It applies the fixed override
// cascade (image -> tag -> variant) to versions and variables, derives a
// suffixed tag per variant and base tag, discovers each tag's template
// identifier, and synthesizes semantic-version aliases such as "9" and
// "9.0" for the highest-versioned tags.
//
// Resolution is a pure function over in-memory data: the same input tree
// always yields a structurally identical Image, and any error aborts the
// whole image with no partial result.
package resolve
