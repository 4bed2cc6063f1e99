package hps

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-hps/dsp/window"
	"gonum.org/v1/gonum/floats"
)

func TestSynthesisWindowsShape(t *testing.T) {
	const ns = 512

	w, err := newSynthesisWindows(ns)
	if err != nil {
		t.Fatalf("newSynthesisWindows() error = %v", err)
	}

	if len(w.bell) != ns || len(w.harmonic) != ns || len(w.stochastic) != ns {
		t.Fatalf("window lengths = %d/%d/%d, want %d", len(w.bell), len(w.harmonic), len(w.stochastic), ns)
	}
	if s := floats.Sum(w.bell); math.Abs(s-1) > 1e-12 {
		t.Fatalf("bell sum = %v, want 1", s)
	}

	hop := ns / 4
	for i := range ns {
		inside := i >= ns/2-hop && i < ns/2+hop
		if !inside && w.harmonic[i] != 0 {
			t.Fatalf("harmonic[%d] = %v outside the triangle support", i, w.harmonic[i])
		}
	}

	if peak := floats.Max(w.stochastic); math.Abs(peak-float64(hop)/2) > 1e-3 {
		t.Fatalf("stochastic peak = %v, want ~%v", peak, float64(hop)/2)
	}
}

// A constant unit signal weighted by the bell window and resynthesized
// through the harmonic window overlap-adds back to one.
func TestHarmonicWindowOverlapAddCompleteness(t *testing.T) {
	for _, ns := range []int{64, 256, 512, 2048} {
		w, err := newSynthesisWindows(ns)
		if err != nil {
			t.Fatalf("ns=%d: newSynthesisWindows() error = %v", ns, err)
		}

		product := make([]float64, ns)
		floats.MulTo(product, w.bell, w.harmonic)

		gain, err := window.OverlapAddGain(product, ns/4)
		if err != nil {
			t.Fatalf("ns=%d: OverlapAddGain() error = %v", ns, err)
		}
		for i, g := range gain {
			if math.Abs(g-1) > 1e-12 {
				t.Fatalf("ns=%d: gain[%d] = %v, want 1", ns, i, g)
			}
		}
	}
}
