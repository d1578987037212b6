// Package imagetest runs container-structure-test
// definitions against built images. Tests execute inside
// a dedicated docker-in-docker sidecar so the host
// daemon's image store stays untouched.
package imagetest
