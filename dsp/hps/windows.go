package hps

import (
	"fmt"

	"github.com/cwbudde/algo-hps/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// synthesisWindows holds the fixed windows of the Ns-point synthesis stage.
type synthesisWindows struct {
	// bell is the unit-sum Blackman-Harris window applied to the residual frame.
	bell []float64
	// harmonic is a 2H-point triangle centred in Ns samples and divided by
	// bell over its support, so bell*harmonic overlap-adds to 1 at hop H.
	harmonic []float64
	// stochastic is an Ns-point Hann window scaled by H/2.
	stochastic []float64
}

func newSynthesisWindows(ns int) (synthesisWindows, error) {
	hop := ns / 4
	hns := ns / 2

	bell, err := window.Normalize(window.Generate(window.TypeBlackmanHarris4Term, ns))
	if err != nil {
		return synthesisWindows{}, fmt.Errorf("hps: bell window: %w", err)
	}

	tri := window.Generate(window.TypeTriangle, 2*hop, window.WithPeriodic())
	harm := make([]float64, ns)
	for i, v := range tri {
		j := hns - hop + i
		if bell[j] == 0 {
			return synthesisWindows{}, fmt.Errorf("%w: bell window is zero at %d inside the triangle support",
				ErrInvalidConfig, j)
		}
		harm[j] = v / bell[j]
	}

	stoch := window.Generate(window.TypeHann, ns)
	floats.Scale(float64(hop)/2, stoch)

	return synthesisWindows{
		bell:       bell,
		harmonic:   harm,
		stochastic: stoch,
	}, nil
}
