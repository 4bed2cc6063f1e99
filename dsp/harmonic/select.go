package harmonic

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hps/dsp/sinusoid"
)

// DefaultDeviationSlope is the per-Hz growth of the harmonic acceptance band.
const DefaultDeviationSlope = 0.01

// Select assigns peaks to the harmonic series of f0 and returns a Set with nH
// slots. Harmonic h is searched while h*f0 is below Nyquist; the nearest peak
// is accepted when it lies within f0/3 + devSlope*f of either h*f0 or the
// frequency harmonic h had in prev. An empty prev stands for the ideal series;
// absent slots of a non-empty prev never match.
func Select(peaks sinusoid.Peaks, f0 float64, nH int, prev Set, sampleRate, devSlope float64) (Set, error) {
	if nH < 1 {
		return Set{}, fmt.Errorf("harmonic count must be >= 1: %d", nH)
	}
	if len(peaks.Freqs) != len(peaks.Mags) || len(peaks.Freqs) != len(peaks.Phases) {
		return Set{}, fmt.Errorf("%w: freqs=%d mags=%d phases=%d",
			errPeakLengths, len(peaks.Freqs), len(peaks.Mags), len(peaks.Phases))
	}

	out := NewSet(nH)
	if !(f0 > 0) || len(peaks.Freqs) == 0 {
		return out, nil
	}

	nyquist := sampleRate / 2
	for i := 0; i < nH; i++ {
		ideal := f0 * float64(i+1)
		if ideal >= nyquist {
			break
		}

		prevFreq := ideal
		if prev.Len() > 0 {
			prevFreq = 0
			if i < prev.Len() {
				prevFreq = prev.Freqs[i]
			}
		}

		j := nearestIndex(peaks.Freqs, ideal)
		f := peaks.Freqs[j]

		dev1 := math.Abs(f - ideal)
		dev2 := sampleRate
		if prevFreq > 0 {
			dev2 = math.Abs(f - prevFreq)
		}

		threshold := f0/3 + devSlope*f
		if dev1 < threshold || dev2 < threshold {
			out.Freqs[i] = f
			out.Mags[i] = peaks.Mags[j]
			out.Phases[i] = peaks.Phases[j]
		}
	}

	return out, nil
}
