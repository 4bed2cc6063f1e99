// Package modelfile stores the per-frame harmonic plus stochastic model as a
// Parquet file, one row per analysis frame.
package modelfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/algo-hps/dsp/harmonic"
	"github.com/cwbudde/algo-hps/dsp/hps"
	parquet "github.com/parquet-go/parquet-go"
)

var ErrUnknownCompression = errors.New("modelfile: unknown compression")

// Row is the on-disk layout of one frame.
type Row struct {
	Centre         int64     `parquet:"centre"`
	F0             float64   `parquet:"f0"`
	HarmonicFreqs  []float64 `parquet:"harmonic_freqs"`
	HarmonicMags   []float64 `parquet:"harmonic_mags"`
	HarmonicPhases []float64 `parquet:"harmonic_phases"`
	Envelope       []float64 `parquet:"envelope"`
}

// Compression returns the writer option for name: "zstd", "gzip"/"gz",
// "snappy" or "none". The empty name selects zstd.
func Compression(name string) (parquet.WriterOption, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip), nil
	case "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "none":
		return parquet.Compression(&parquet.Uncompressed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

// Rows converts frames to rows. Slices are copied.
func Rows(frames []hps.Frame) []Row {
	out := make([]Row, len(frames))
	for i, f := range frames {
		out[i] = Row{
			Centre:         int64(f.Centre),
			F0:             f.F0,
			HarmonicFreqs:  append([]float64(nil), f.Harmonics.Freqs...),
			HarmonicMags:   append([]float64(nil), f.Harmonics.Mags...),
			HarmonicPhases: append([]float64(nil), f.Harmonics.Phases...),
			Envelope:       append([]float64(nil), f.Envelope...),
		}
	}
	return out
}

// Frames converts rows back to frames.
func Frames(rows []Row) []hps.Frame {
	out := make([]hps.Frame, len(rows))
	for i, r := range rows {
		out[i] = hps.Frame{
			Centre: int(r.Centre),
			F0:     r.F0,
			Harmonics: harmonic.Set{
				Freqs:  append([]float64(nil), r.HarmonicFreqs...),
				Mags:   append([]float64(nil), r.HarmonicMags...),
				Phases: append([]float64(nil), r.HarmonicPhases...),
			},
			Envelope: append([]float64(nil), r.Envelope...),
		}
	}
	return out
}

// Encode writes frames to w as a single Parquet file.
func Encode(w io.Writer, frames []hps.Frame, compression parquet.WriterOption) error {
	pw := parquet.NewGenericWriter[Row](w, compression)
	if _, err := pw.Write(Rows(frames)); err != nil {
		return fmt.Errorf("modelfile: write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("modelfile: close writer: %w", err)
	}
	return nil
}

// Decode reads every frame from the Parquet file in r.
func Decode(r io.ReaderAt) ([]hps.Frame, error) {
	gr := parquet.NewGenericReader[Row](r)
	defer gr.Close()

	rows := make([]Row, 0, gr.NumRows())
	for {
		// Fresh batch each pass: the reader may reuse slice storage.
		batch := make([]Row, 256)
		n, err := gr.Read(batch)
		if n > 0 {
			rows = append(rows, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("modelfile: read rows: %w", err)
		}
	}
	return Frames(rows), nil
}

// Write stores frames at path.
func Write(path string, frames []hps.Frame, compression parquet.WriterOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("modelfile: create %s: %w", path, err)
	}
	if err := Encode(f, frames, compression); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read loads the frames stored at path.
func Read(path string) ([]hps.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modelfile: open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}
