package utils

import "math"

// Pow raises x to a small non-negative or negative integer power without
// going through math.Pow's general exponent path for the common cases that
// show up in B-spline evaluation (degree <= 3) and stencil weight tables.
func Pow(x float64, p int) float64 {
	if p < 0 {
		return 1. / Pow(x, -p)
	}
	switch p {
	case 0:
		return 1
	case 1:
		return x
	case 2:
		return x * x
	case 3:
		return x * x * x
	default:
		return math.Pow(x, float64(p))
	}
}

// Clamp01 clamps v into [0,1], for an interpolation parameter that must be
// forced into the unit interval. The isosurface package's Hermite root
// clamping uses its own clamp01 rather than this helper.
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
