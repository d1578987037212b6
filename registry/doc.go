// Package registry holds the workspace registry settings and the retag
// flow that re-applies computed aliases to a pushed image. Remote
// operations (digest lookup, tag creation) go through the crane CLI; the
// resolution core itself never touches the network.
package registry
