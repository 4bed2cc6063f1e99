package hps

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-hps/dsp/harmonic"
	"github.com/cwbudde/algo-hps/dsp/window"
	"go.uber.org/zap"
)

const (
	minFFTSize       = 512
	minSynthesisSize = 64
)

// ErrInvalidConfig is returned by New for any rejected configuration value.
var ErrInvalidConfig = errors.New("hps: invalid configuration")

// Transform modifies the model between analysis and synthesis.
// The zero value is not the identity; use IdentityTransform.
type Transform struct {
	// FreqScale multiplies every harmonic frequency.
	FreqScale float64
	// HarmonicGainDB is added to every present harmonic magnitude.
	HarmonicGainDB float64
	// StochasticGainDB is added to the stochastic envelope.
	StochasticGainDB float64
}

// IdentityTransform returns the transform that leaves the model unchanged.
func IdentityTransform() Transform {
	return Transform{FreqScale: 1}
}

func (t Transform) isIdentity() bool {
	return t.FreqScale == 1 && t.HarmonicGainDB == 0 && t.StochasticGainDB == 0
}

// Config holds the analysis and synthesis parameters of a Model.
type Config struct {
	WindowType window.Type
	WindowSize int // analysis window length M, odd or even
	FFTSize    int // analysis FFT size N

	ThresholdDB      float64 // peak threshold, negative dB
	NumHarmonics     int
	MinF0            float64 // Hz
	MaxF0            float64 // Hz
	F0ErrorThreshold float64
	MaxPeaksTWM      int
	DeviationSlope   float64

	StochasticFactor float64 // envelope decimation factor in (0, 1]
	SynthesisSize    int     // Ns
	Seed             int64

	Transform Transform
	Logger    *zap.Logger
}

// DefaultConfig returns the reference configuration: a 801-point Blackman
// window with a 1024-point FFT, -90 dB threshold, 50 harmonics searched
// between 350 and 700 Hz, and a stochastic factor of 0.2.
func DefaultConfig() Config {
	return Config{
		WindowType:       window.TypeBlackman,
		WindowSize:       801,
		FFTSize:          1024,
		ThresholdDB:      -90,
		NumHarmonics:     50,
		MinF0:            350,
		MaxF0:            700,
		F0ErrorThreshold: 10,
		MaxPeaksTWM:      5,
		DeviationSlope:   harmonic.DefaultDeviationSlope,
		StochasticFactor: 0.2,
		SynthesisSize:    512,
		Seed:             1,
		Transform:        IdentityTransform(),
	}
}

// Option mutates a Config. Options are applied in order.
type Option func(*Config)

// WithWindow sets the analysis window type and length.
func WithWindow(t window.Type, size int) Option {
	return func(c *Config) {
		c.WindowType = t
		c.WindowSize = size
	}
}

// WithFFTSize sets the analysis FFT size.
func WithFFTSize(n int) Option {
	return func(c *Config) { c.FFTSize = n }
}

// WithThreshold sets the peak detection threshold in dB.
func WithThreshold(db float64) Option {
	return func(c *Config) { c.ThresholdDB = db }
}

// WithHarmonics sets the number of harmonic slots.
func WithHarmonics(n int) Option {
	return func(c *Config) { c.NumHarmonics = n }
}

// WithF0Range sets the fundamental frequency search range in Hz.
func WithF0Range(minF0, maxF0 float64) Option {
	return func(c *Config) {
		c.MinF0 = minF0
		c.MaxF0 = maxF0
	}
}

// WithF0ErrorThreshold sets the maximum accepted two-way mismatch error.
func WithF0ErrorThreshold(v float64) Option {
	return func(c *Config) { c.F0ErrorThreshold = v }
}

// WithMaxPeaksTWM sets how many peaks the F0 search weighs.
func WithMaxPeaksTWM(n int) Option {
	return func(c *Config) { c.MaxPeaksTWM = n }
}

// WithDeviationSlope sets the frequency-proportional part of the harmonic
// acceptance band.
func WithDeviationSlope(v float64) Option {
	return func(c *Config) { c.DeviationSlope = v }
}

// WithStochasticFactor sets the envelope decimation factor.
func WithStochasticFactor(v float64) Option {
	return func(c *Config) { c.StochasticFactor = v }
}

// WithSynthesisSize sets the synthesis FFT size Ns.
func WithSynthesisSize(n int) Option {
	return func(c *Config) { c.SynthesisSize = n }
}

// WithSeed sets the seed of the stochastic phase generator.
func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithTransform sets the synthesis transform.
func WithTransform(t Transform) Option {
	return func(c *Config) { c.Transform = t }
}

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func (c Config) validate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidConfig, sampleRate)
	}
	if c.WindowType.String() == "unknown" {
		return fmt.Errorf("%w: unknown window type %d", ErrInvalidConfig, c.WindowType)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window size must be > 0: %d", ErrInvalidConfig, c.WindowSize)
	}
	if c.FFTSize < minFFTSize || !isPowerOf2(c.FFTSize) {
		return fmt.Errorf("%w: FFT size must be a power of two >= %d: %d", ErrInvalidConfig, minFFTSize, c.FFTSize)
	}
	if c.WindowSize > c.FFTSize {
		return fmt.Errorf("%w: window size %d exceeds FFT size %d", ErrInvalidConfig, c.WindowSize, c.FFTSize)
	}
	if !(c.ThresholdDB < 0) {
		return fmt.Errorf("%w: threshold must be negative dB: %f", ErrInvalidConfig, c.ThresholdDB)
	}
	if c.NumHarmonics < 1 {
		return fmt.Errorf("%w: harmonic count must be >= 1: %d", ErrInvalidConfig, c.NumHarmonics)
	}
	if !(c.MinF0 > 0) || !(c.MinF0 < c.MaxF0) || !(c.MaxF0 < sampleRate/2) {
		return fmt.Errorf("%w: F0 range must satisfy 0 < min < max < %g: [%g, %g]",
			ErrInvalidConfig, sampleRate/2, c.MinF0, c.MaxF0)
	}
	if !(c.F0ErrorThreshold > 0) {
		return fmt.Errorf("%w: F0 error threshold must be > 0: %f", ErrInvalidConfig, c.F0ErrorThreshold)
	}
	if c.MaxPeaksTWM < 1 {
		return fmt.Errorf("%w: max TWM peaks must be >= 1: %d", ErrInvalidConfig, c.MaxPeaksTWM)
	}
	if !(c.DeviationSlope >= 0) || math.IsInf(c.DeviationSlope, 0) {
		return fmt.Errorf("%w: deviation slope must be >= 0: %f", ErrInvalidConfig, c.DeviationSlope)
	}
	if !(c.StochasticFactor > 0 && c.StochasticFactor <= 1) {
		return fmt.Errorf("%w: stochastic factor must be in (0, 1]: %f", ErrInvalidConfig, c.StochasticFactor)
	}
	if c.SynthesisSize < minSynthesisSize || !isPowerOf2(c.SynthesisSize) {
		return fmt.Errorf("%w: synthesis size must be a power of two >= %d: %d",
			ErrInvalidConfig, minSynthesisSize, c.SynthesisSize)
	}
	t := c.Transform
	if !(t.FreqScale > 0) || math.IsInf(t.FreqScale, 0) {
		return fmt.Errorf("%w: transform frequency scale must be > 0: %f", ErrInvalidConfig, t.FreqScale)
	}
	if math.IsNaN(t.HarmonicGainDB) || math.IsInf(t.HarmonicGainDB, 0) ||
		math.IsNaN(t.StochasticGainDB) || math.IsInf(t.StochasticGainDB, 0) {
		return fmt.Errorf("%w: transform gains must be finite: %f, %f",
			ErrInvalidConfig, t.HarmonicGainDB, t.StochasticGainDB)
	}

	return nil
}

func isPowerOf2(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
