package mesh

import "golang.org/x/exp/constraints"

// convertIndices narrows src into dst and returns dst. dst must be at least
// as long as src and values must fit in T.
func convertIndices[T constraints.Unsigned](dst []T, src []uint32) []T {
	dst = dst[:len(src)]
	for i, idx := range src {
		dst[i] = T(idx)
	}
	return dst
}
