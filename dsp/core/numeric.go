package core

import "math"

const defaultEpsilon = 1e-12

// FloorDB is the lowest level, in dB, that spectral magnitudes are clamped to
// before logarithmic processing. It stands in for silence.
const FloorDB = -200.0

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// FlooredDB converts a non-negative linear magnitude to dB and clamps the
// result at floorDB, so zero magnitudes map to floorDB instead of -Inf.
func FlooredDB(linear, floorDB float64) float64 {
	if !(linear > 0) {
		return floorDB
	}

	return math.Max(floorDB, 20*math.Log10(linear))
}

// FlooredLinear converts dB back to linear amplitude. Values at or below
// floorDB map to exactly zero.
func FlooredLinear(db, floorDB float64) float64 {
	if db <= floorDB {
		return 0
	}

	return math.Pow(10, db/20)
}
