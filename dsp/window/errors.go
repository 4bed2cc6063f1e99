package window

import (
	"errors"
	"fmt"
)

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
	errInvalidHop       = errors.New("window hop must be in [1, len(coeffs)]")
	errUnknownType      = errors.New("window type is unknown")
)

func validateLength(size int) error {
	if size <= 0 {
		return fmt.Errorf("window size must be > 0: %d", size)
	}
	return nil
}

func unknownNameError(name string) error {
	return fmt.Errorf("%w: %q", errUnknownType, name)
}
