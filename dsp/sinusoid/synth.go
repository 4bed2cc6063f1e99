package sinusoid

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hps/dsp/spectrum"
)

const (
	// lobeSize is the transform length the main-lobe kernel is evaluated for.
	lobeSize = 512
	// lobeHalfWidth is the number of bins on each side of the lobe centre.
	lobeHalfWidth = 4
	minSynthSize  = 4 * lobeHalfWidth
)

var bhLobeCoeffs = [4]float64{0.35875, 0.48829, 0.14128, 0.01168}

var errSynthSize = errors.New("sinusoid synthesis size must be even and >= 16")

// Synthesize writes into dst the spectrum of sinusoids at fractional bins loc
// with dB magnitudes mag and phases phase. Each sinusoid contributes a 9-bin
// Blackman-Harris main lobe with unit peak gain, so the inverse transform of
// dst is the sum of the sinusoids weighted by a unit-sum Blackman-Harris
// window of length len(dst). Sinusoids at bin 0 or above len(dst)/2-1 are
// skipped. dst is cleared first and returned conjugate symmetric.
func Synthesize(dst []complex128, loc, mag, phase []float64) error {
	n := len(dst)
	if n < minSynthSize || n%2 != 0 {
		return fmt.Errorf("%w: %d", errSynthSize, n)
	}
	if len(loc) != len(mag) || len(loc) != len(phase) {
		return fmt.Errorf("%w: loc=%d mag=%d phase=%d", errPeakArguments, len(loc), len(mag), len(phase))
	}

	for i := range dst {
		dst[i] = 0
	}

	half := n / 2
	var lobe [2*lobeHalfWidth + 1]float64

	for i, l := range loc {
		if !(l > 0) || l > float64(half-1) {
			continue
		}

		center := math.Round(l)
		remainder := center - l
		gain := math.Pow(10, mag[i]/20)
		for m := range lobe {
			lobe[m] = bhLobe(remainder+float64(m-lobeHalfWidth)) * gain
		}

		pos := cmplx.Rect(1, phase[i])
		neg := cmplx.Conj(pos)
		c := int(center)

		for m, v := range lobe {
			b := c + m - lobeHalfWidth
			switch {
			case b < 0:
				dst[-b] += complex(v, 0) * neg
			case b > half:
				dst[n-b] += complex(v, 0) * neg
			case b == 0 || b == half:
				dst[b] += complex(v, 0) * (pos + neg)
			default:
				dst[b] += complex(v, 0) * pos
			}
		}
	}

	return spectrum.MirrorHermitian(dst)
}

// bhLobe evaluates the main lobe of the 4-term Blackman-Harris window at
// offset x bins, normalized to 1 at x = 0.
func bhLobe(x float64) float64 {
	const n = lobeSize

	f := 2 * math.Pi * x / n
	df := 2 * math.Pi / n

	y := 0.0
	for m, c := range bhLobeCoeffs {
		y += c / 2 * (dirichlet(f-df*float64(m), n) + dirichlet(f+df*float64(m), n))
	}

	return y / n / bhLobeCoeffs[0]
}

// dirichlet returns sin(n*x/2)/sin(x/2), with its limit n at x = 0.
func dirichlet(x float64, n int) float64 {
	d := math.Sin(x / 2)
	if math.Abs(d) < 1e-300 {
		return float64(n)
	}
	return math.Sin(float64(n)*x/2) / d
}
