package modelfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cwbudde/algo-hps/dsp/harmonic"
	"github.com/cwbudde/algo-hps/dsp/hps"
	"github.com/cwbudde/algo-hps/internal/testutil"
)

func sampleFrames() []hps.Frame {
	voiced := harmonic.NewSet(3)
	voiced.Freqs[0], voiced.Mags[0], voiced.Phases[0] = 440.2, -12.5, 0.75
	voiced.Freqs[2], voiced.Mags[2], voiced.Phases[2] = 1320.9, -30, -2.1

	return []hps.Frame{
		{Centre: 401, F0: 440.1, Harmonics: voiced, Envelope: []float64{-60, -62.5, -70}},
		{Centre: 529, F0: 0, Harmonics: harmonic.NewSet(3), Envelope: []float64{-200, -200, -200}},
	}
}

func requireFramesEqual(t *testing.T, got, want []hps.Frame) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Centre != want[i].Centre || got[i].F0 != want[i].F0 {
			t.Fatalf("frame %d: centre/f0 = %d/%v, want %d/%v",
				i, got[i].Centre, got[i].F0, want[i].Centre, want[i].F0)
		}
		testutil.RequireSliceNearlyEqual(t, got[i].Harmonics.Freqs, want[i].Harmonics.Freqs, 0)
		testutil.RequireSliceNearlyEqual(t, got[i].Harmonics.Mags, want[i].Harmonics.Mags, 0)
		testutil.RequireSliceNearlyEqual(t, got[i].Harmonics.Phases, want[i].Harmonics.Phases, 0)
		testutil.RequireSliceNearlyEqual(t, got[i].Envelope, want[i].Envelope, 0)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, name := range []string{"zstd", "gzip", "snappy", "none"} {
		t.Run(name, func(t *testing.T) {
			comp, err := Compression(name)
			if err != nil {
				t.Fatalf("Compression(%q) error = %v", name, err)
			}

			var buf bytes.Buffer
			want := sampleFrames()
			if err := Encode(&buf, want, comp); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			got, err := Decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			requireFramesEqual(t, got, want)
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.parquet")
	comp, err := Compression("")
	if err != nil {
		t.Fatal(err)
	}

	want := sampleFrames()
	if err := Write(path, want, comp); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	requireFramesEqual(t, got, want)
}

func TestManyFramesSpanBatches(t *testing.T) {
	want := make([]hps.Frame, 600)
	for i := range want {
		set := harmonic.NewSet(2)
		set.Freqs[0] = float64(100 + i)
		set.Mags[0] = -float64(i % 90)
		want[i] = hps.Frame{Centre: 401 + 128*i, F0: float64(100 + i), Harmonics: set, Envelope: []float64{float64(-i)}}
	}

	comp, err := Compression("snappy")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, want, comp); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	got, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	requireFramesEqual(t, got, want)
}

func TestRowsCopies(t *testing.T) {
	frames := sampleFrames()
	rows := Rows(frames)
	rows[0].HarmonicFreqs[0] = 1
	rows[0].Envelope[0] = 1

	if frames[0].Harmonics.Freqs[0] != 440.2 || frames[0].Envelope[0] != -60 {
		t.Fatal("Rows shares storage with the input frames")
	}
	if !reflect.DeepEqual(Frames(Rows(frames)), frames) {
		t.Fatal("Frames(Rows(x)) != x")
	}
}

func TestCompressionUnknown(t *testing.T) {
	if _, err := Compression("lzma"); !errors.Is(err, ErrUnknownCompression) {
		t.Fatalf("Compression(lzma) error = %v, want ErrUnknownCompression", err)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
