package hps

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-hps/dsp/harmonic"
	"github.com/cwbudde/algo-hps/dsp/sinusoid"
	"github.com/cwbudde/algo-hps/dsp/window"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
)

// Frame is the analysis record of one frame.
type Frame struct {
	// Centre is the input sample the analysis window is centred on.
	Centre int
	// F0 is the estimated fundamental in Hz, 0 for unvoiced frames.
	F0 float64
	// Harmonics holds the detected harmonics before any transform.
	Harmonics harmonic.Set
	// Envelope is the decimated stochastic envelope in dB.
	Envelope []float64
}

// Result holds the synthesized components and the per-frame model.
// Sum, Harmonic and Stochastic have the input's length.
type Result struct {
	Sum        []float64
	Harmonic   []float64
	Stochastic []float64
	Frames     []Frame
}

// VoicedFrames returns the number of frames with a fundamental.
func (r *Result) VoicedFrames() int {
	n := 0
	for _, f := range r.Frames {
		if f.F0 > 0 {
			n++
		}
	}
	return n
}

// Model runs harmonic plus stochastic analysis and resynthesis.
//
// A Model owns scratch buffers and FFT plans and is not safe for concurrent
// use. Separate models may run in parallel.
type Model struct {
	cfg        Config
	sampleRate float64
	logger     *zap.Logger

	hM1  int
	hM2  int
	ns   int
	hns  int
	hop  int
	f0   harmonic.F0Params
	wins synthesisWindows

	analyzer   *sinusoid.Analyzer
	residual   *residualEstimator
	stochastic *stochasticModeler
	ola        *overlapAdder
	transSpec  []complex128
}

// carry is the state threaded from one frame to the next.
type carry struct {
	// analysed harmonics, used for continuity in selection
	harmonics harmonic.Set
	// synthesized harmonics, used for phase propagation
	synth harmonic.Set
}

// New validates the configuration built from DefaultConfig and opts and
// returns a Model for signals at sampleRate. Every configuration error wraps
// ErrInvalidConfig.
func New(sampleRate float64, opts ...Option) (*Model, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := cfg.validate(sampleRate); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	win, err := window.New(cfg.WindowType, cfg.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	analyzer, err := sinusoid.NewAnalyzer(win, cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	ns := cfg.SynthesisSize
	wins, err := newSynthesisWindows(ns)
	if err != nil {
		return nil, err
	}
	residual, err := newResidualEstimator(ns, sampleRate, wins.bell)
	if err != nil {
		return nil, err
	}
	ola, err := newOverlapAdder(ns)
	if err != nil {
		return nil, err
	}

	m := &Model{
		cfg:        cfg,
		sampleRate: sampleRate,
		logger:     logger,
		hM1:        (cfg.WindowSize + 1) / 2,
		hM2:        cfg.WindowSize / 2,
		ns:         ns,
		hns:        ns / 2,
		hop:        ns / 4,
		f0: harmonic.F0Params{
			MinF0:          cfg.MinF0,
			MaxF0:          cfg.MaxF0,
			ErrorThreshold: cfg.F0ErrorThreshold,
			MaxPeaks:       cfg.MaxPeaksTWM,
		},
		wins:       wins,
		analyzer:   analyzer,
		residual:   residual,
		stochastic: newStochasticModeler(ns, cfg.StochasticFactor, cfg.Seed),
		ola:        ola,
		transSpec:  make([]complex128, ns),
	}

	logger.Debug("hps model created",
		zap.Float64("sample_rate", sampleRate),
		zap.Stringer("window", cfg.WindowType),
		zap.Int("window_size", cfg.WindowSize),
		zap.Int("fft_size", cfg.FFTSize),
		zap.Int("synthesis_size", ns),
		zap.Int("hop", m.hop),
		zap.Int("harmonics", cfg.NumHarmonics),
		zap.Float64("min_f0", cfg.MinF0),
		zap.Float64("max_f0", cfg.MaxF0),
		zap.Float64("stochastic_factor", cfg.StochasticFactor),
		zap.Int("envelope_size", m.stochastic.decLen),
	)

	return m, nil
}

// Config returns the validated configuration.
func (m *Model) Config() Config { return m.cfg }

// SampleRate returns the sample rate in Hz.
func (m *Model) SampleRate() float64 { return m.sampleRate }

// Hop returns the frame advance in samples.
func (m *Model) Hop() int { return m.hop }

// Process analyses x and returns its resynthesized components. x is not
// modified. Inputs too short for a single frame give all-zero outputs.
// The stochastic phase generator restarts from the configured seed on every
// call, so repeated calls return identical results.
func (m *Model) Process(x []float64) (*Result, error) {
	started := time.Now()

	res := &Result{
		Sum:        make([]float64, len(x)),
		Harmonic:   make([]float64, len(x)),
		Stochastic: make([]float64, len(x)),
	}

	m.stochastic.reset(m.cfg.Seed)

	centres := FrameCentres(len(x), m.cfg.WindowSize, m.ns)
	res.Frames = make([]Frame, 0, len(centres))

	var c carry
	for _, pin := range centres {
		var (
			frame Frame
			err   error
		)
		c, frame, err = m.step(x, pin, c, res)
		if err != nil {
			return nil, fmt.Errorf("hps: frame at sample %d: %w", pin, err)
		}
		res.Frames = append(res.Frames, frame)
	}

	floats.AddTo(res.Sum, res.Harmonic, res.Stochastic)

	m.logger.Info("hps processing finished",
		zap.Int("samples", len(x)),
		zap.Int("frames", len(res.Frames)),
		zap.Int("voiced_frames", res.VoicedFrames()),
		zap.Duration("elapsed", time.Since(started)),
	)

	return res, nil
}

// step analyses the frame centred at pin against the carried state, adds its
// synthesized components into res, and returns the state for the next frame.
func (m *Model) step(x []float64, pin int, prev carry, res *Result) (carry, Frame, error) {
	magDB, phase, err := m.analyzer.Analyze(x[pin-m.hM1 : pin+m.hM2])
	if err != nil {
		return carry{}, Frame{}, err
	}

	peaks, err := sinusoid.Detect(magDB, phase, m.cfg.ThresholdDB, m.cfg.FFTSize, m.sampleRate)
	if err != nil {
		return carry{}, Frame{}, err
	}

	f0, err := harmonic.EstimateF0(peaks.Freqs, peaks.Mags, m.f0)
	if err != nil {
		return carry{}, Frame{}, err
	}

	h, err := harmonic.Select(peaks, f0, m.cfg.NumHarmonics, prev.harmonics, m.sampleRate, m.cfg.DeviationSlope)
	if err != nil {
		return carry{}, Frame{}, err
	}

	offset := residualOffset(pin, m.ns)

	residual, err := m.residual.estimate(x, offset, h)
	if err != nil {
		return carry{}, Frame{}, err
	}

	envelope, err := m.stochastic.envelope(residual)
	if err != nil {
		return carry{}, Frame{}, err
	}
	stochSpec, err := m.stochastic.spectrum(m.cfg.Transform.StochasticGainDB)
	if err != nil {
		return carry{}, Frame{}, err
	}

	synth := h
	harmSpec := m.residual.harmonic
	if t := m.cfg.Transform; !t.isIdentity() {
		synth = h.Transformed(t.FreqScale, t.HarmonicGainDB)
		if t.FreqScale != 1 {
			synth.PropagatePhases(prev.synth, m.hop, m.sampleRate)
		}
		if err := m.residual.synthesize(m.transSpec, synth); err != nil {
			return carry{}, Frame{}, err
		}
		harmSpec = m.transSpec
	}

	if err := m.ola.add(res.Harmonic, harmSpec, m.wins.harmonic, offset); err != nil {
		return carry{}, Frame{}, err
	}
	if err := m.ola.add(res.Stochastic, stochSpec, m.wins.stochastic, offset); err != nil {
		return carry{}, Frame{}, err
	}

	if ce := m.logger.Check(zapcore.DebugLevel, "hps frame"); ce != nil {
		ce.Write(
			zap.Int("centre", pin),
			zap.Int("peaks", peaks.Len()),
			zap.Float64("f0", f0),
			zap.Int("harmonics", h.Count()),
		)
	}

	frame := Frame{
		Centre:    pin,
		F0:        f0,
		Harmonics: h,
		Envelope:  envelope,
	}

	return carry{harmonics: h, synth: synth}, frame, nil
}
