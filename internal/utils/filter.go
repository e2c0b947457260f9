package utils

// Filter returns the elements of slice for which keep returns true,
// preserving order.
func Filter[T any](slice []T, keep func(T) bool) []T {
	var result []T
	for _, item := range slice {
		if keep(item) {
			result = append(result, item)
		}
	}
	return result
}
