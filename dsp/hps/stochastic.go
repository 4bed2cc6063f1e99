package hps

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/cwbudde/algo-hps/dsp/core"
	"github.com/cwbudde/algo-hps/dsp/resample"
	"github.com/cwbudde/algo-hps/dsp/spectrum"
)

// stochasticModeler approximates a residual spectrum by a smooth magnitude
// envelope with random phase.
type stochasticModeler struct {
	ns     int
	hns    int
	decLen int
	rng    *rand.Rand

	magDB []float64
	env   []float64
	phase []float64
	spec  []complex128
}

func newStochasticModeler(ns int, factor float64, seed int64) *stochasticModeler {
	hns := ns / 2

	return &stochasticModeler{
		ns:     ns,
		hns:    hns,
		decLen: resample.Length(hns, factor),
		rng:    rand.New(rand.NewSource(seed)),
		magDB:  make([]float64, hns),
		env:    make([]float64, hns),
		phase:  make([]float64, hns),
		spec:   make([]complex128, ns),
	}
}

func (s *stochasticModeler) reset(seed int64) {
	s.rng.Seed(seed)
}

// envelope returns the decimated dB envelope of the residual bins 0..Ns/2-1
// and leaves the envelope interpolated back to Ns/2 bins in s.env.
func (s *stochasticModeler) envelope(residual []complex128) ([]float64, error) {
	silent := true
	for k := range s.magDB {
		s.magDB[k] = core.FlooredDB(cmplx.Abs(residual[k]), core.FloorDB)
		if s.magDB[k] > core.FloorDB {
			silent = false
		}
	}

	if silent {
		dec := make([]float64, s.decLen)
		for k := range dec {
			dec[k] = core.FloorDB
		}
		for k := range s.env {
			s.env[k] = core.FloorDB
		}
		return dec, nil
	}

	dec, err := resample.Fourier(s.magDB, s.decLen)
	if err != nil {
		return nil, err
	}
	env, err := resample.Fourier(dec, s.hns)
	if err != nil {
		return nil, err
	}
	copy(s.env, env)

	return dec, nil
}

// spectrum builds the Hermitian noise spectrum of the current envelope with
// gainDB applied. Envelope values at or below the floor contribute nothing.
// A phase is drawn for every bin on each call, so the random sequence does
// not depend on the signal.
func (s *stochasticModeler) spectrum(gainDB float64) ([]complex128, error) {
	for k := range s.phase {
		s.phase[k] = 2 * math.Pi * s.rng.Float64()
	}

	for k := range s.spec {
		s.spec[k] = 0
	}

	for k := range s.hns {
		if s.env[k] <= core.FloorDB {
			continue
		}
		mag := core.DBToLinear(s.env[k] + gainDB)
		if k == 0 {
			s.spec[0] = complex(mag*math.Cos(s.phase[0]), 0)
			continue
		}
		s.spec[k] = cmplx.Rect(mag, s.phase[k])
	}

	if err := spectrum.MirrorHermitian(s.spec); err != nil {
		return nil, err
	}

	return s.spec, nil
}
