package hps

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-hps/dsp/harmonic"
	"github.com/cwbudde/algo-hps/dsp/sinusoid"
	"github.com/cwbudde/algo-hps/dsp/spectrum"
	"github.com/cwbudde/algo-hps/dsp/window"
)

// residualEstimator computes the Ns-point spectrum of an input frame minus
// the spectrum of its harmonic model.
type residualEstimator struct {
	ns         int
	sampleRate float64
	bell       []float64
	plan       *algofft.Plan[complex128]

	frame    []float64
	buf      []float64
	signal   []complex128
	harmonic []complex128
	residual []complex128
	locs     []float64
}

func newResidualEstimator(ns int, sampleRate float64, bell []float64) (*residualEstimator, error) {
	plan, err := algofft.NewPlan64(ns)
	if err != nil {
		return nil, fmt.Errorf("hps: failed to create residual FFT plan: %w", err)
	}

	return &residualEstimator{
		ns:         ns,
		sampleRate: sampleRate,
		bell:       bell,
		plan:       plan,
		frame:      make([]float64, ns),
		buf:        make([]float64, ns),
		signal:     make([]complex128, ns),
		harmonic:   make([]complex128, ns),
		residual:   make([]complex128, ns),
	}, nil
}

// estimate returns the residual spectrum of x[offset:offset+Ns] against h.
// The harmonic spectrum stays available in r.harmonic until the next call.
func (r *residualEstimator) estimate(x []float64, offset int, h harmonic.Set) ([]complex128, error) {
	readFrame(r.frame, x, offset)
	if err := window.ApplyCoefficientsInPlace(r.frame, r.bell); err != nil {
		return nil, err
	}
	if err := spectrum.ZeroPhase(r.buf, r.frame); err != nil {
		return nil, err
	}

	for i, v := range r.buf {
		r.signal[i] = complex(v, 0)
	}
	if err := r.plan.Forward(r.signal, r.signal); err != nil {
		return nil, fmt.Errorf("hps: residual forward FFT failed: %w", err)
	}

	if err := r.synthesize(r.harmonic, h); err != nil {
		return nil, err
	}

	if err := spectrum.Subtract(r.residual, r.signal, r.harmonic); err != nil {
		return nil, err
	}

	return r.residual, nil
}

// synthesize writes the Ns-point main-lobe spectrum of h into dst.
func (r *residualEstimator) synthesize(dst []complex128, h harmonic.Set) error {
	r.locs = r.locs[:0]
	for _, f := range h.Freqs {
		r.locs = append(r.locs, sinusoid.HzToBin(f, r.ns, r.sampleRate))
	}

	return sinusoid.Synthesize(dst, r.locs, h.Mags, h.Phases)
}
