package signal

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Generator creates deterministic test signals at a fixed sample rate.
type Generator struct {
	sampleRate float64
	seed       int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a signal generator for sampleRate.
func NewGenerator(sampleRate float64, opts ...Option) (*Generator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("generator sample rate must be > 0: %f", sampleRate)
	}

	g := &Generator{
		sampleRate: sampleRate,
		seed:       1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	return g, nil
}

// SampleRate returns the generator sample rate in Hz.
func (g *Generator) SampleRate() float64 { return g.sampleRate }

// Seed returns the noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	return g.HarmonicTone(freqHz, []float64{amplitude}, samples)
}

// HarmonicTone generates a sum of sines at integer multiples of f0. amps[h-1]
// is the amplitude of harmonic h. Harmonics at or above Nyquist are skipped.
func (g *Generator) HarmonicTone(f0 float64, amps []float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("tone samples must be > 0: %d", samples)
	}
	if f0 <= 0 || math.IsNaN(f0) || math.IsInf(f0, 0) {
		return nil, fmt.Errorf("tone frequency must be > 0: %f", f0)
	}
	if len(amps) == 0 {
		return nil, fmt.Errorf("tone amplitudes must not be empty")
	}

	out := make([]float64, samples)
	nyquist := g.sampleRate / 2
	for h, a := range amps {
		f := f0 * float64(h+1)
		if f >= nyquist {
			break
		}
		if a == 0 {
			continue
		}
		step := 2 * math.Pi * f / g.sampleRate
		for i := range out {
			out[i] += a * math.Sin(step*float64(i))
		}
	}

	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Mix adds src into dst scaled by gain. Both slices must have the same length.
func Mix(dst, src []float64, gain float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("mix slices must have same length: %d != %d", len(dst), len(src))
	}
	floats.AddScaled(dst, gain, src)
	return nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	floats.ScaleTo(out, targetPeak/maxAbs, data)
	return out, nil
}
