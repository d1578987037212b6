// Package depgraph computes a deterministic build order for a set of
// resolved images from their extends relations and detects dependency
// cycles.
package depgraph
