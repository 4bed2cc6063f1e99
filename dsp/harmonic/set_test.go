package harmonic

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-hps/dsp/core"
)

func TestNewSetIsAbsent(t *testing.T) {
	s := NewSet(4)
	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	for i := range s.Len() {
		if s.Present(i) {
			t.Fatalf("slot %d present in new set", i)
		}
		if s.Mags[i] != core.FloorDB || s.Phases[i] != 0 || s.Magnitude(i) != 0 {
			t.Fatalf("slot %d = (%v, %v, %v), want floor/zero", i, s.Mags[i], s.Phases[i], s.Magnitude(i))
		}
	}
	if s.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", s.Count())
	}
}

func TestSetMagnitude(t *testing.T) {
	s := NewSet(2)
	s.Freqs[0], s.Mags[0] = 220, -20

	if got := s.Magnitude(0); math.Abs(got-0.1) > 1e-12 {
		t.Fatalf("Magnitude(0) = %v, want 0.1", got)
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
}

func TestSetTransformed(t *testing.T) {
	s := NewSet(3)
	s.Freqs[0], s.Mags[0], s.Phases[0] = 200, -10, 1
	s.Freqs[2], s.Mags[2] = 600, -30

	out := s.Transformed(1.5, -6)

	if out.Freqs[0] != 300 || out.Mags[0] != -16 || out.Phases[0] != 1 {
		t.Fatalf("slot 0 = (%v, %v, %v)", out.Freqs[0], out.Mags[0], out.Phases[0])
	}
	if out.Present(1) || out.Mags[1] != core.FloorDB {
		t.Fatalf("absent slot changed: (%v, %v)", out.Freqs[1], out.Mags[1])
	}
	if out.Freqs[2] != 900 {
		t.Fatalf("slot 2 freq = %v, want 900", out.Freqs[2])
	}
	if s.Freqs[0] != 200 {
		t.Fatal("Transformed modified the receiver")
	}
}

func TestPropagatePhases(t *testing.T) {
	prev := NewSet(3)
	prev.Freqs[0], prev.Mags[0], prev.Phases[0] = 100, 0, 0.25

	cur := NewSet(3)
	cur.Freqs[0], cur.Mags[0], cur.Phases[0] = 100, 0, 2
	cur.Freqs[1], cur.Mags[1], cur.Phases[1] = 200, 0, -1

	cur.PropagatePhases(prev, 32, 12800)

	want := 0.25 + math.Pi/2
	if math.Abs(cur.Phases[0]-want) > 1e-12 {
		t.Fatalf("phase[0] = %v, want %v", cur.Phases[0], want)
	}
	if cur.Phases[1] != -1 {
		t.Fatalf("new harmonic phase = %v, want -1", cur.Phases[1])
	}
	if cur.Phases[2] != 0 {
		t.Fatalf("absent harmonic phase = %v, want 0", cur.Phases[2])
	}
}
