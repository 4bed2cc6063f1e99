// Command hpsmodel decomposes a sound into harmonic and stochastic parts and
// writes the resynthesized components as WAV files.
//
// Usage:
//
//	hpsmodel [flags] input.wav
//	hpsmodel -tone 440 [flags]
//
// Outputs are written to <prefix>_sum.wav, <prefix>_harmonic.wav and
// <prefix>_stochastic.wav, where prefix defaults to the input name without
// extension. With -model the per-frame model is also stored as
// <prefix>_model.parquet.
//
// Examples:
//
//	hpsmodel sax-phrase.wav
//	hpsmodel -minf0 80 -maxf0 300 -window hann -M 1201 -N 2048 voice.wav
//	hpsmodel -freq-scale 1.5 -stoch-gain -6 -out shifted sax-phrase.wav
//	hpsmodel -tone 440 -noise 0.05 -duration 2 -out test
//	hpsmodel -model -model-compression snappy sax-phrase.wav
//	hpsmodel -list-windows
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-hps/dsp/hps"
	"github.com/cwbudde/algo-hps/dsp/signal"
	"github.com/cwbudde/algo-hps/dsp/window"
	"github.com/cwbudde/algo-hps/internal/audiofile"
	"github.com/cwbudde/algo-hps/internal/modelfile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var errUsage = errors.New("usage")

type options struct {
	windowName string
	windowSize int
	fftSize    int
	threshold  float64
	harmonics  int
	minF0      float64
	maxF0      float64
	f0Error    float64
	stocf      float64
	maxPeaks   int
	synthSize  int
	slope      float64
	seed       int64

	freqScale float64
	harmGain  float64
	stochGain float64

	out      string
	bits     int
	model    bool
	modelZip string
	tone     float64
	noise    float64
	duration float64
	rate     float64

	verbose     bool
	listWindows bool
	input       string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 2
	}

	if opts.listWindows {
		for _, n := range window.Names() {
			fmt.Fprintln(stdout, n)
		}
		return 0
	}

	logger, err := newLogger(opts.verbose, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := process(opts, logger, stdout); err != nil {
		logger.Error("hpsmodel failed", zap.Error(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("hpsmodel", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.windowName, "window", "blackman", "analysis window (see -list-windows)")
	fs.IntVar(&o.windowSize, "M", 801, "analysis window length in samples")
	fs.IntVar(&o.fftSize, "N", 1024, "analysis FFT size (power of two >= 512)")
	fs.Float64Var(&o.threshold, "t", -90, "peak threshold in dB (negative)")
	fs.IntVar(&o.harmonics, "nH", 50, "number of harmonics")
	fs.Float64Var(&o.minF0, "minf0", 350, "minimum fundamental frequency in Hz")
	fs.Float64Var(&o.maxF0, "maxf0", 700, "maximum fundamental frequency in Hz")
	fs.Float64Var(&o.f0Error, "f0et", 10, "maximum two-way mismatch error")
	fs.Float64Var(&o.stocf, "stocf", 0.2, "stochastic envelope decimation factor in (0, 1]")
	fs.IntVar(&o.maxPeaks, "maxpeaks", 5, "peaks used for F0 detection")
	fs.IntVar(&o.synthSize, "Ns", 512, "synthesis FFT size (power of two >= 64)")
	fs.Float64Var(&o.slope, "slope", 0.01, "harmonic deviation slope")
	fs.Int64Var(&o.seed, "seed", 1, "stochastic phase seed")
	fs.Float64Var(&o.freqScale, "freq-scale", 1, "harmonic frequency scaling factor")
	fs.Float64Var(&o.harmGain, "harm-gain", 0, "harmonic gain in dB")
	fs.Float64Var(&o.stochGain, "stoch-gain", 0, "stochastic gain in dB")
	fs.StringVar(&o.out, "out", "", "output prefix (default: input name without extension)")
	fs.IntVar(&o.bits, "bits", 16, "output bit depth (16 or 24)")
	fs.BoolVar(&o.model, "model", false, "also write the per-frame model as <prefix>_model.parquet")
	fs.StringVar(&o.modelZip, "model-compression", "zstd", "model file compression (zstd, gzip, snappy, none)")
	fs.Float64Var(&o.tone, "tone", 0, "analyse a generated harmonic tone at this frequency instead of a file")
	fs.Float64Var(&o.noise, "noise", 0, "white noise amplitude added to the generated tone")
	fs.Float64Var(&o.duration, "duration", 1, "generated tone duration in seconds")
	fs.Float64Var(&o.rate, "rate", 44100, "generated tone sample rate in Hz")
	fs.BoolVar(&o.verbose, "v", false, "verbose development logging")
	fs.BoolVar(&o.listWindows, "list-windows", false, "list available window names")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hpsmodel [flags] input.wav\n")
		fmt.Fprintf(stderr, "       hpsmodel -tone 440 [flags]\n\n")
		fmt.Fprintf(stderr, "Harmonic plus stochastic analysis and resynthesis.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.listWindows {
		return o, nil
	}

	switch {
	case fs.NArg() == 1 && o.tone == 0:
		o.input = fs.Arg(0)
	case fs.NArg() == 0 && o.tone > 0:
	default:
		fs.Usage()
		return o, errUsage
	}

	if o.out == "" {
		if o.input == "" {
			o.out = fmt.Sprintf("tone%g", o.tone)
		} else {
			o.out = strings.TrimSuffix(o.input, filepath.Ext(o.input))
		}
	}

	return o, nil
}

func newLogger(verbose bool, stderr io.Writer) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentEncoderConfig()
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(stderr), zapcore.DebugLevel)
		return zap.New(core, zap.AddCaller()), nil
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(stderr), zapcore.InfoLevel)

	return zap.New(core), nil
}

func process(o options, logger *zap.Logger, stdout io.Writer) error {
	wt, err := window.ParseType(o.windowName)
	if err != nil {
		return err
	}

	compression, err := modelfile.Compression(o.modelZip)
	if err != nil {
		return err
	}

	x, fs, err := loadInput(o)
	if err != nil {
		return err
	}
	logger.Info("input loaded",
		zap.String("source", sourceName(o)),
		zap.Int("samples", len(x)),
		zap.Float64("sample_rate", fs),
	)

	model, err := hps.New(fs,
		hps.WithWindow(wt, o.windowSize),
		hps.WithFFTSize(o.fftSize),
		hps.WithThreshold(o.threshold),
		hps.WithHarmonics(o.harmonics),
		hps.WithF0Range(o.minF0, o.maxF0),
		hps.WithF0ErrorThreshold(o.f0Error),
		hps.WithStochasticFactor(o.stocf),
		hps.WithMaxPeaksTWM(o.maxPeaks),
		hps.WithSynthesisSize(o.synthSize),
		hps.WithDeviationSlope(o.slope),
		hps.WithSeed(o.seed),
		hps.WithTransform(hps.Transform{
			FreqScale:        o.freqScale,
			HarmonicGainDB:   o.harmGain,
			StochasticGainDB: o.stochGain,
		}),
		hps.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	res, err := model.Process(x)
	if err != nil {
		return err
	}

	outputs := []struct {
		suffix string
		data   []float64
	}{
		{"_sum", res.Sum},
		{"_harmonic", res.Harmonic},
		{"_stochastic", res.Stochastic},
	}
	for _, out := range outputs {
		path := o.out + out.suffix + ".wav"
		if err := audiofile.Write(path, out.data, fs, o.bits); err != nil {
			return err
		}
		logger.Info("output written", zap.String("path", path))
	}

	if o.model {
		path := o.out + "_model.parquet"
		if err := modelfile.Write(path, res.Frames, compression); err != nil {
			return err
		}
		logger.Info("model written",
			zap.String("path", path),
			zap.Int("frames", len(res.Frames)),
			zap.String("compression", o.modelZip),
		)
	}

	printSummary(stdout, x, res, fs)

	return nil
}

func loadInput(o options) ([]float64, float64, error) {
	if o.input != "" {
		return audiofile.Read(o.input)
	}

	n := int(math.Round(o.duration * o.rate))
	gen, err := signal.NewGenerator(o.rate, signal.WithSeed(o.seed))
	if err != nil {
		return nil, 0, err
	}

	// 1/h amplitudes, a sawtooth-like spectrum.
	amps := make([]float64, o.harmonics)
	for h := range amps {
		amps[h] = 0.3 / float64(h+1)
	}
	x, err := gen.HarmonicTone(o.tone, amps, n)
	if err != nil {
		return nil, 0, err
	}

	if o.noise > 0 {
		noise, err := gen.WhiteNoise(o.noise, n)
		if err != nil {
			return nil, 0, err
		}
		if err := signal.Mix(x, noise, 1); err != nil {
			return nil, 0, err
		}
	}

	return x, o.rate, nil
}

func sourceName(o options) string {
	if o.input != "" {
		return o.input
	}
	return fmt.Sprintf("tone %g Hz", o.tone)
}

func printSummary(w io.Writer, x []float64, res *hps.Result, fs float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	voiced := res.VoicedFrames()
	ratio := 0.0
	if len(res.Frames) > 0 {
		ratio = float64(voiced) / float64(len(res.Frames))
	}

	fmt.Fprintf(tw, "duration\t%.3f s\n", float64(len(x))/fs)
	fmt.Fprintf(tw, "frames\t%d\n", len(res.Frames))
	fmt.Fprintf(tw, "voiced\t%d (%.1f%%)\n", voiced, 100*ratio)
	fmt.Fprintf(tw, "median f0\t%s\n", formatF0(medianF0(res.Frames)))
	fmt.Fprintf(tw, "rms input\t%s\n", formatDB(rms(x)))
	fmt.Fprintf(tw, "rms sum\t%s\n", formatDB(rms(res.Sum)))
	fmt.Fprintf(tw, "rms harmonic\t%s\n", formatDB(rms(res.Harmonic)))
	fmt.Fprintf(tw, "rms stochastic\t%s\n", formatDB(rms(res.Stochastic)))
}

// medianF0 returns the median F0 of the voiced frames, or 0 if none.
func medianF0(frames []hps.Frame) float64 {
	var f0s []float64
	for _, f := range frames {
		if f.F0 > 0 {
			f0s = append(f0s, f.F0)
		}
	}
	if len(f0s) == 0 {
		return 0
	}
	sort.Float64s(f0s)
	return stat.Quantile(0.5, stat.Empirical, f0s, nil)
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

func formatF0(f0 float64) string {
	if f0 == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f Hz", f0)
}

func formatDB(v float64) string {
	if v == 0 {
		return "-inf dBFS"
	}
	return fmt.Sprintf("%.2f dBFS", 20*math.Log10(v))
}
