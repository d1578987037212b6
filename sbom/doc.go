// Package sbom generates software bill of materials
// documents for built image tarballs by driving the syft
// CLI.
package sbom
