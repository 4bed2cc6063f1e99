package sinusoid

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-hps/dsp/spectrum"
)

// Peaks is an ascending set of spectral peaks.
type Peaks struct {
	Freqs  []float64 // Hz
	Mags   []float64 // dB
	Phases []float64 // rad
}

// Len returns the number of peaks.
func (p Peaks) Len() int { return len(p.Freqs) }

// DetectPeaks returns the bins k (1 <= k <= len-2) whose magnitude is above
// thresholdDB and strictly greater than both neighbours.
func DetectPeaks(magDB []float64, thresholdDB float64) []int {
	var bins []int
	for k := 1; k < len(magDB)-1; k++ {
		v := magDB[k]
		if v > thresholdDB && v > magDB[k+1] && v > magDB[k-1] {
			bins = append(bins, k)
		}
	}
	return bins
}

// InterpolatePeaks refines each peak bin with a parabola through the dB
// magnitudes of the bin and its neighbours. It returns fractional bin
// locations, the interpolated magnitudes and the phase linearly interpolated
// at each location.
func InterpolatePeaks(magDB, phase []float64, bins []int) (loc, mag, ph []float64, err error) {
	if len(magDB) != len(phase) {
		return nil, nil, nil, fmt.Errorf("%w: mag=%d phase=%d", errPeakArguments, len(magDB), len(phase))
	}

	loc = make([]float64, len(bins))
	mag = make([]float64, len(bins))
	ph = make([]float64, len(bins))

	for i, k := range bins {
		if k < 1 || k > len(magDB)-2 {
			return nil, nil, nil, fmt.Errorf("sinusoid peak bin out of range [1, %d]: %d", len(magDB)-2, k)
		}

		l, v, r := magDB[k-1], magDB[k], magDB[k+1]
		den := l - 2*v + r
		offset := 0.0
		if den != 0 {
			offset = 0.5 * (l - r) / den
		}

		loc[i] = float64(k) + offset
		mag[i] = v - 0.25*(l-r)*offset

		p, err := spectrum.LinearAt(phase, loc[i])
		if err != nil {
			return nil, nil, nil, err
		}
		ph[i] = p
	}

	return loc, mag, ph, nil
}

// Detect runs peak detection and interpolation on one analysed frame and
// converts the locations to Hz for an FFT of size n at sampleRate.
func Detect(magDB, phase []float64, thresholdDB float64, n int, sampleRate float64) (Peaks, error) {
	bins := DetectPeaks(magDB, thresholdDB)
	loc, mag, ph, err := InterpolatePeaks(magDB, phase, bins)
	if err != nil {
		return Peaks{}, err
	}

	for i := range loc {
		loc[i] = BinToHz(loc[i], n, sampleRate)
	}

	return Peaks{Freqs: loc, Mags: mag, Phases: ph}, nil
}

// BinToHz converts a fractional bin of an n-point FFT to Hz.
func BinToHz(bin float64, n int, sampleRate float64) float64 {
	return sampleRate * bin / float64(n)
}

// HzToBin converts a frequency to a fractional bin of an n-point FFT.
func HzToBin(freq float64, n int, sampleRate float64) float64 {
	if sampleRate == 0 {
		return math.NaN()
	}
	return float64(n) * freq / sampleRate
}
