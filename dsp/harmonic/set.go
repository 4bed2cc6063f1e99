package harmonic

import (
	"math"

	"github.com/cwbudde/algo-hps/dsp/core"
)

// Set holds harmonics 1..Len() of one frame. Index i is harmonic i+1.
type Set struct {
	Freqs  []float64 // Hz, 0 when absent
	Mags   []float64 // dB, core.FloorDB when absent
	Phases []float64 // rad, 0 when absent
}

// NewSet returns a set of n absent harmonics.
func NewSet(n int) Set {
	s := Set{
		Freqs:  make([]float64, n),
		Mags:   make([]float64, n),
		Phases: make([]float64, n),
	}
	for i := range s.Mags {
		s.Mags[i] = core.FloorDB
	}
	return s
}

// Len returns the number of slots.
func (s Set) Len() int { return len(s.Freqs) }

// Present reports whether harmonic slot i holds a detected peak.
func (s Set) Present(i int) bool { return s.Freqs[i] > 0 }

// Count returns the number of present harmonics.
func (s Set) Count() int {
	n := 0
	for i := range s.Freqs {
		if s.Present(i) {
			n++
		}
	}
	return n
}

// Magnitude returns the linear magnitude of slot i; absent slots return 0.
func (s Set) Magnitude(i int) float64 {
	if !s.Present(i) {
		return 0
	}
	return core.FlooredLinear(s.Mags[i], core.FloorDB)
}

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	return Set{
		Freqs:  append([]float64(nil), s.Freqs...),
		Mags:   append([]float64(nil), s.Mags...),
		Phases: append([]float64(nil), s.Phases...),
	}
}

// Transformed returns a copy of s with present frequencies multiplied by
// freqScale and present magnitudes offset by gainDB.
func (s Set) Transformed(freqScale, gainDB float64) Set {
	out := s.Clone()
	for i := range out.Freqs {
		if !out.Present(i) {
			continue
		}
		out.Freqs[i] *= freqScale
		out.Mags[i] = math.Max(core.FloorDB, out.Mags[i]+gainDB)
	}
	return out
}

// PropagatePhases replaces the phase of every harmonic that was also present
// in prev by the phase reached when running at the average of both
// frequencies for hop samples. Harmonics new in s keep their own phase.
// prev may be empty.
func (s Set) PropagatePhases(prev Set, hop int, sampleRate float64) {
	for i := range s.Freqs {
		if !s.Present(i) {
			s.Phases[i] = 0
			continue
		}
		if i >= prev.Len() || !prev.Present(i) {
			continue
		}
		advance := math.Pi * (prev.Freqs[i] + s.Freqs[i]) * float64(hop) / sampleRate
		s.Phases[i] = math.Remainder(prev.Phases[i]+advance, 2*math.Pi)
	}
}
