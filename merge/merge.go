package merge

// Merge applies layers in order and returns a new map
// whose key set is the union of all layer key sets. For
// each key, the value from the last layer that defines
// it wins. Values are replaced wholesale; nested
// structures are never combined. Nil or empty layers
// are no-ops.
func Merge[V any](layers ...map[string]V) map[string]V {
	result := make(map[string]V)

	for _, la := range layers {
		for key, val := range la {
			result[key] = val
		}
	}

	return result
}
