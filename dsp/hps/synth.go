package hps

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-hps/dsp/spectrum"
	"github.com/cwbudde/algo-hps/dsp/window"
)

// overlapAdder turns Ns-point zero-phase spectra into windowed time frames
// and accumulates them into an output buffer.
type overlapAdder struct {
	plan  *algofft.Plan[complex128]
	time  []complex128
	buf   []float64
	frame []float64
}

func newOverlapAdder(ns int) (*overlapAdder, error) {
	plan, err := algofft.NewPlan64(ns)
	if err != nil {
		return nil, fmt.Errorf("hps: failed to create synthesis FFT plan: %w", err)
	}

	return &overlapAdder{
		plan:  plan,
		time:  make([]complex128, ns),
		buf:   make([]float64, ns),
		frame: make([]float64, ns),
	}, nil
}

// add inverse-transforms spec, undoes the zero-phase arrangement, applies win
// and adds the frame into dst starting at offset. Samples outside dst are
// dropped.
func (o *overlapAdder) add(dst []float64, spec []complex128, win []float64, offset int) error {
	if err := o.plan.Inverse(o.time, spec); err != nil {
		return fmt.Errorf("hps: synthesis inverse FFT failed: %w", err)
	}

	for i, v := range o.time {
		o.buf[i] = real(v)
	}
	if err := spectrum.UndoZeroPhase(o.frame, o.buf); err != nil {
		return err
	}
	if err := window.ApplyCoefficientsInPlace(o.frame, win); err != nil {
		return err
	}

	lo := max(0, -offset)
	hi := min(len(o.frame), len(dst)-offset)
	for i := lo; i < hi; i++ {
		dst[offset+i] += o.frame[i]
	}

	return nil
}
