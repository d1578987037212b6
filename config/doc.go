// Package config loads and validates the declarative build-matrix
// description of a container image. Each image directory carries an
// image.yml naming the image, its tags, and its variants, together with
// version and variable mappings at every level. Validation is an explicit
// pass producing either a fully-typed tree or a *ValidationError; nothing
// downstream re-validates.
package config
