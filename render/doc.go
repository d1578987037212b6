// Package render maps a resolved image model into file contents: one
// Dockerfile and one test configuration per tag, expanded with
// fasttemplate from the templates in the image's configuration directory.
// The renderer consumes the model as-is; it never re-merges or re-derives
// anything.
package render
