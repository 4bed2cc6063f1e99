package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-hps/dsp/hps"
	"github.com/cwbudde/algo-hps/internal/audiofile"
	"github.com/cwbudde/algo-hps/internal/modelfile"
)

func TestRunTone(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "tone")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-tone", "440", "-duration", "0.5", "-t", "-60", "-out", prefix}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}

	for _, suffix := range []string{"_sum", "_harmonic", "_stochastic"} {
		x, fs, err := audiofile.Read(prefix + suffix + ".wav")
		if err != nil {
			t.Fatalf("Read(%s) error = %v", suffix, err)
		}
		if fs != 44100 || len(x) != 22050 {
			t.Fatalf("%s: fs=%v len=%d, want 44100/22050", suffix, fs, len(x))
		}
	}

	out := stdout.String()
	for _, want := range []string{"frames", "166", "median f0", "rms stochastic"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(stderr.String(), "hps processing finished") {
		t.Fatalf("expected JSON summary log, got:\n%s", stderr.String())
	}
}

func TestRunInputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")

	x := make([]float64, 4096)
	for i := range x {
		x[i] = 0.1
	}
	if err := audiofile.Write(in, x, 16000, 16); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-minf0", "100", "-maxf0", "400", in}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}

	if _, err := os.Stat(filepath.Join(dir, "in_harmonic.wav")); err != nil {
		t.Fatalf("harmonic output missing: %v", err)
	}
}

func TestRunModelOutput(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "tone")

	var stdout, stderr bytes.Buffer
	args := []string{"-tone", "440", "-duration", "0.5", "-t", "-60", "-model", "-model-compression", "snappy", "-out", prefix}
	if code := run(args, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}

	frames, err := modelfile.Read(prefix + "_model.parquet")
	if err != nil {
		t.Fatalf("modelfile.Read() error = %v", err)
	}
	if len(frames) != 166 {
		t.Fatalf("len(frames) = %d, want 166", len(frames))
	}
	if f0 := medianF0(frames); f0 < 438 || f0 > 442 {
		t.Fatalf("median f0 = %v, want about 440", f0)
	}
	if frames[0].Harmonics.Len() != 50 {
		t.Fatalf("harmonic slots = %d, want 50", frames[0].Harmonics.Len())
	}
	if !strings.Contains(stderr.String(), "model written") {
		t.Fatalf("expected model log, got:\n%s", stderr.String())
	}
}

func TestRunListWindows(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-list-windows"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d", code)
	}
	if !strings.Contains(stdout.String(), "blackman-harris-4t") {
		t.Fatalf("window list missing blackman-harris-4t:\n%s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no input", args: nil, code: 2},
		{name: "input and tone", args: []string{"-tone", "440", "x.wav"}, code: 2},
		{name: "bad flag", args: []string{"-bogus"}, code: 2},
		{name: "unknown window", args: []string{"-tone", "440", "-window", "nope", "-out", "unused"}, code: 1},
		{name: "missing file", args: []string{"does-not-exist.wav"}, code: 1},
		{name: "unknown compression", args: []string{"-tone", "440", "-model-compression", "lzma", "-out", "unused"}, code: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, &stdout, &stderr); code != tt.code {
				t.Fatalf("run() = %d, want %d; stderr:\n%s", code, tt.code, stderr.String())
			}
		})
	}
}

func TestMedianF0(t *testing.T) {
	frames := []hps.Frame{{F0: 0}, {F0: 441}, {F0: 439}, {F0: 440}}
	if got := medianF0(frames); got != 440 {
		t.Fatalf("medianF0() = %v, want 440", got)
	}
	if got := medianF0([]hps.Frame{{F0: 0}}); got != 0 {
		t.Fatalf("medianF0(unvoiced) = %v, want 0", got)
	}
}
