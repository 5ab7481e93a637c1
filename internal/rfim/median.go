package rfim

import "slices"

// Median returns the median of x, averaging the two middle values when
// len(x) is even. x is not modified. The median of an empty slice is 0.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
