package harmonic

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Two-way mismatch weights.
const (
	twmP   = 0.5
	twmQ   = 1.4
	twmR   = 0.5
	twmRho = 0.33
)

var errPeakLengths = errors.New("harmonic peak slices must have matching lengths")

// F0Params bounds the fundamental frequency search.
type F0Params struct {
	MinF0          float64 // Hz, exclusive
	MaxF0          float64 // Hz, exclusive
	ErrorThreshold float64 // maximum accepted mismatch error
	MaxPeaks       int     // peaks used by the mismatch error terms
}

// EstimateF0 returns the fundamental frequency of the peaks freqs (Hz) with
// dB magnitudes mags. Candidates are the peaks strictly inside
// (MinF0, MaxF0). It returns 0 when there is no candidate or the best
// candidate's mismatch error is not below ErrorThreshold.
func EstimateF0(freqs, mags []float64, p F0Params) (float64, error) {
	if len(freqs) != len(mags) {
		return 0, fmt.Errorf("%w: freqs=%d mags=%d", errPeakLengths, len(freqs), len(mags))
	}
	if p.MaxPeaks < 1 {
		return 0, fmt.Errorf("harmonic max peaks must be >= 1: %d", p.MaxPeaks)
	}
	if len(freqs) == 0 {
		return 0, nil
	}

	var candidates []float64
	for _, f := range freqs {
		if f > p.MinF0 && f < p.MaxF0 {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	f0, errVal := twoWayMismatch(freqs, mags, candidates, p.MaxPeaks)
	if f0 > 0 && errVal < p.ErrorThreshold {
		return f0, nil
	}

	return 0, nil
}

// twoWayMismatch returns the candidate with the lowest combined
// predicted-to-measured and measured-to-predicted error, and that error.
func twoWayMismatch(freqs, mags, candidates []float64, maxPeaks int) (float64, float64) {
	aMax := floats.Max(mags)
	nPM := min(maxPeaks, len(freqs))
	nMP := nPM

	best, bestErr := 0.0, math.Inf(1)
	for _, f0 := range candidates {
		errPM := 0.0
		for h := 1; h <= nPM; h++ {
			harm := f0 * float64(h)
			nearest := nearestIndex(freqs, harm)
			pond := math.Abs(freqs[nearest]-harm) * math.Pow(harm, -twmP)
			magFactor := math.Pow(10, (mags[nearest]-aMax)/20)
			errPM += pond + magFactor*(twmQ*pond-twmR)
		}

		errMP := 0.0
		for i := range nMP {
			nHarm := math.Max(math.Round(freqs[i]/f0), 1)
			pond := math.Abs(freqs[i]-nHarm*f0) * math.Pow(freqs[i], -twmP)
			magFactor := math.Pow(10, (mags[i]-aMax)/20)
			errMP += magFactor * (pond + magFactor*(twmQ*pond-twmR))
		}

		total := errPM/float64(nPM) + twmRho*errMP/float64(nMP)
		if total < bestErr {
			best, bestErr = f0, total
		}
	}

	return best, bestErr
}

// nearestIndex returns the index of the element of freqs closest to f.
// Ties resolve to the lower index.
func nearestIndex(freqs []float64, f float64) int {
	idx := 0
	best := math.Inf(1)
	for i, v := range freqs {
		if d := math.Abs(v - f); d < best {
			idx, best = i, d
		}
	}
	return idx
}
