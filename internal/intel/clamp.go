package intel

import "math"

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampScore bounds v to the 0..100 score range.
func ClampScore(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Round rounds v to the given number of decimals. Scores are rounded before
// they leave a component so repeated runs compare equal byte for byte.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
