package sinusoid

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-hps/dsp/spectrum"
	"github.com/cwbudde/algo-hps/dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// magFloor is the smallest linear magnitude converted to dB.
	magFloor = 2.220446049250313e-16
	// partTolerance zeroes real or imaginary parts below it before taking the
	// phase, so bins that are numerically empty report phase 0.
	partTolerance = 1e-14
)

var (
	errEmptyWindow   = errors.New("sinusoid analysis window must not be empty")
	errFrameSize     = errors.New("sinusoid frame length must equal window length")
	errAnalysisSize  = errors.New("sinusoid FFT size must be even and >= window length")
	errPeakArguments = errors.New("sinusoid peak slices must have matching lengths")
)

// Analyzer computes the magnitude and phase spectrum of one frame.
//
// The window is normalized to unit sum, so a sinusoid of amplitude A shows a
// peak of 20*log10(A/2) dB. The windowed frame is placed in zero-phase
// position before the transform; phases therefore refer to the frame centre
// sample at index floor(M/2).
//
// An Analyzer reuses its buffers and is not safe for concurrent use.
type Analyzer struct {
	n      int
	window []float64

	fft    *fourier.FFT
	frame  []float64
	buf    []float64
	coeffs []complex128
	mag    []float64
	phase  []float64
}

// NewAnalyzer creates an analyzer for window coefficients win and FFT size n.
func NewAnalyzer(win []float64, n int) (*Analyzer, error) {
	if len(win) == 0 {
		return nil, errEmptyWindow
	}
	if n < len(win) || n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("%w: n=%d window=%d", errAnalysisSize, n, len(win))
	}

	norm, err := window.Normalize(win)
	if err != nil {
		return nil, fmt.Errorf("sinusoid analysis window: %w", err)
	}

	bins := n/2 + 1

	return &Analyzer{
		n:      n,
		window: norm,
		fft:    fourier.NewFFT(n),
		frame:  make([]float64, len(win)),
		buf:    make([]float64, n),
		coeffs: make([]complex128, bins),
		mag:    make([]float64, bins),
		phase:  make([]float64, bins),
	}, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.n }

// WindowLen returns the analysis window length.
func (a *Analyzer) WindowLen() int { return len(a.window) }

// Analyze returns the dB magnitude and unwrapped phase of the positive half of
// the spectrum (n/2+1 bins). The returned slices are owned by the Analyzer and
// are overwritten by the next call.
func (a *Analyzer) Analyze(frame []float64) (magDB, phase []float64, err error) {
	if len(frame) != len(a.window) {
		return nil, nil, fmt.Errorf("%w: frame=%d window=%d", errFrameSize, len(frame), len(a.window))
	}

	if err := window.ApplyCoefficientsInPlace(copyInto(a.frame, frame), a.window); err != nil {
		return nil, nil, err
	}
	if err := spectrum.ZeroPhase(a.buf, a.frame); err != nil {
		return nil, nil, err
	}

	a.fft.Coefficients(a.coeffs, a.buf)

	spectrum.MagnitudeInto(a.mag, a.coeffs)
	for k, m := range a.mag {
		a.mag[k] = 20 * math.Log10(math.Max(m, magFloor))

		re, im := real(a.coeffs[k]), imag(a.coeffs[k])
		if math.Abs(re) < partTolerance {
			re = 0
		}
		if math.Abs(im) < partTolerance {
			im = 0
		}
		a.phase[k] = cmplx.Phase(complex(re, im))
	}
	spectrum.UnwrapPhaseInto(a.phase, a.phase)

	return a.mag, a.phase, nil
}

func copyInto(dst, src []float64) []float64 {
	copy(dst, src)
	return dst
}
