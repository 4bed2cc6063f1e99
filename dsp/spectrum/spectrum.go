package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

var (
	errEmptyInput   = errors.New("spectrum input must not be empty")
	errOddSpectrum  = errors.New("spectrum length must be even and >= 2")
	errLongFrame    = errors.New("spectrum frame longer than buffer")
	errLenMismatch  = errors.New("spectrum slices must have same length")
	errOutsideRange = errors.New("spectrum position outside sequence")
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

func putScratch(buf *scratchBuf) {
	scratchPool.Put(buf)
}

// Magnitude returns |X[k]| for each complex spectrum bin.
//
// This function uses SIMD-optimized implementations when available (AVX2, SSE2, NEON)
// for improved performance on large spectrum arrays. Scratch buffers are pooled
// internally, so in steady state this allocates only the output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	MagnitudeInto(out, in)

	return out
}

// MagnitudeInto computes |X[k]| into dst. dst must be at least len(in) long.
func MagnitudeInto(dst []float64, in []complex128) {
	if len(in) == 0 {
		return
	}

	re, im, buf := getScratch(len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(dst[:len(in)], re, im)
	putScratch(buf)
}

// Phase returns arg(X[k]) for each complex spectrum bin in radians.
func Phase(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}
	out := make([]float64, len(in))
	for i, c := range in {
		out[i] = cmplx.Phase(c)
	}
	return out
}

// UnwrapPhase returns a new phase slice with +/-2*pi discontinuities removed.
func UnwrapPhase(phase []float64) []float64 {
	if len(phase) == 0 {
		return nil
	}
	out := make([]float64, len(phase))
	UnwrapPhaseInto(out, phase)
	return out
}

// UnwrapPhaseInto writes the unwrapped form of phase into dst.
// dst may alias phase.
func UnwrapPhaseInto(dst, phase []float64) {
	if len(phase) == 0 {
		return
	}
	prev := phase[0]
	dst[0] = phase[0]
	offset := 0.0
	for i := 1; i < len(phase); i++ {
		cur := phase[i]
		d := cur - prev
		switch {
		case d > math.Pi:
			offset -= 2 * math.Pi
		case d < -math.Pi:
			offset += 2 * math.Pi
		}
		dst[i] = cur + offset
		prev = cur
	}
}

// LinearAt returns y sampled at the fractional index pos by linear
// interpolation between the neighbouring elements.
func LinearAt(y []float64, pos float64) (float64, error) {
	if len(y) == 0 {
		return 0, errEmptyInput
	}
	if math.IsNaN(pos) || pos < 0 || pos > float64(len(y)-1) {
		return 0, fmt.Errorf("%w: %f not in [0, %d]", errOutsideRange, pos, len(y)-1)
	}

	i := int(math.Floor(pos))
	if i == len(y)-1 {
		return y[i], nil
	}

	t := pos - float64(i)
	return y[i] + t*(y[i+1]-y[i]), nil
}

// ZeroPhase places frame into buf so the frame's centre sample lands at
// index 0: the second half of frame (from floor(M/2)) goes to the start of buf,
// the first half to the end, and the remainder of buf is zeroed. For
// len(frame) == len(buf) with even length this swaps the two halves.
func ZeroPhase(buf, frame []float64) error {
	m := len(frame)
	if m == 0 {
		return errEmptyInput
	}
	if m > len(buf) {
		return fmt.Errorf("%w: frame=%d buffer=%d", errLongFrame, m, len(buf))
	}

	hM1 := (m + 1) / 2
	hM2 := m / 2

	for i := range buf {
		buf[i] = 0
	}

	copy(buf[:hM1], frame[hM2:])
	copy(buf[len(buf)-hM2:], frame[:hM2])

	return nil
}

// UndoZeroPhase is the inverse of [ZeroPhase]: it restores the natural time
// order of a len(frame) window from the zero-phase arrangement held in buf.
func UndoZeroPhase(frame, buf []float64) error {
	m := len(frame)
	if m == 0 {
		return errEmptyInput
	}
	if m > len(buf) {
		return fmt.Errorf("%w: frame=%d buffer=%d", errLongFrame, m, len(buf))
	}

	hM1 := (m + 1) / 2
	hM2 := m / 2

	copy(frame[hM2:], buf[:hM1])
	copy(frame[:hM2], buf[len(buf)-hM2:])

	return nil
}

// MirrorHermitian makes spec conjugate symmetric from its non-negative half:
// DC and Nyquist are made real and bins N-k are set to conj(X[k]) for
// 0 < k < N/2. The inverse transform of the result is real.
func MirrorHermitian(spec []complex128) error {
	n := len(spec)
	if n < 2 || n%2 != 0 {
		return fmt.Errorf("%w: %d", errOddSpectrum, n)
	}

	half := n / 2
	spec[0] = complex(real(spec[0]), 0)
	spec[half] = complex(real(spec[half]), 0)

	for k := 1; k < half; k++ {
		spec[n-k] = cmplx.Conj(spec[k])
	}

	return nil
}

// Subtract writes a-b into dst element-wise over the full length.
func Subtract(dst, a, b []complex128) error {
	if len(a) != len(b) || len(dst) != len(a) {
		return fmt.Errorf("%w: dst=%d a=%d b=%d", errLenMismatch, len(dst), len(a), len(b))
	}

	for i := range a {
		dst[i] = a[i] - b[i]
	}

	return nil
}
