package resample

import (
	"errors"
	"fmt"

	"github.com/mjibson/go-dsp/fft"
)

var (
	// ErrEmptyInput indicates an empty input sequence.
	ErrEmptyInput = errors.New("resample: empty input")
	// ErrInvalidLength indicates a non-positive output length.
	ErrInvalidLength = errors.New("resample: invalid output length")
)

// Fourier resamples x to num samples using the DFT method.
//
// The output is scaled by num/len(x) so that a constant input keeps its value.
func Fourier(x []float64, num int) ([]float64, error) {
	nx := len(x)
	if nx == 0 {
		return nil, ErrEmptyInput
	}

	if num <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, num)
	}

	if num == nx {
		return append([]float64(nil), x...), nil
	}

	X := fft.FFTReal(x)
	Y := make([]complex128, num)

	n := min(num, nx)
	nyq := n/2 + 1

	copy(Y[:nyq], X[:nyq])

	for k := 1; k <= (n-1)/2; k++ {
		Y[num-k] = X[nx-k]
	}

	if n%2 == 0 {
		half := n / 2

		switch {
		case num < nx:
			Y[half] += X[nx-half]
		case num > nx:
			Y[half] *= 0.5
			Y[num-half] = Y[half]
		}
	}

	y := fft.IFFT(Y)
	scale := float64(num) / float64(nx)

	out := make([]float64, num)
	for i := range out {
		out[i] = real(y[i]) * scale
	}

	return out, nil
}

// Length returns round(n*factor), never less than 1. It is the decimated
// length used for a sequence of n samples compressed by factor in (0, 1].
func Length(n int, factor float64) int {
	m := int(float64(n)*factor + 0.5)
	if m < 1 {
		return 1
	}

	return m
}
