// Package audiofile reads and writes mono PCM WAV files as float64 samples.
package audiofile

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-hps/dsp/core"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const pcmFormat = 1

var (
	ErrInvalidFile         = errors.New("audiofile: not a valid WAV file")
	ErrUnsupportedBitDepth = errors.New("audiofile: unsupported bit depth")
	ErrInvalidSampleRate   = errors.New("audiofile: invalid sample rate")
)

// Read decodes the PCM WAV file at path. Multi-channel files are mixed down
// to mono by averaging; integer samples are scaled to [-1, 1).
func Read(path string) ([]float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audiofile: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("audiofile: decode %s: %w", path, err)
	}

	depth := buf.SourceBitDepth
	if !supportedDepth(depth) {
		return nil, 0, fmt.Errorf("%w: %d bits in %s", ErrUnsupportedBitDepth, depth, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	scale := 1 / math.Ldexp(1, depth-1)
	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := range out {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c]
		}
		out[i] = float64(sum) * scale / float64(channels)
	}

	return out, float64(buf.Format.SampleRate), nil
}

// Write encodes samples as a mono PCM WAV file of bitDepth bits (16 or 24).
// Samples are clipped to [-1, 1].
func Write(path string, samples []float64, sampleRate float64, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if sampleRate < 1 || math.IsInf(sampleRate, 0) || sampleRate != math.Trunc(sampleRate) {
		return fmt.Errorf("%w: %f", ErrInvalidSampleRate, sampleRate)
	}

	full := math.Ldexp(1, bitDepth-1) - 1
	data := make([]int, len(samples))
	for i, v := range samples {
		data[i] = int(math.Round(core.Clamp(v, -1, 1) * full))
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  int(sampleRate),
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, buf.Format.SampleRate, bitDepth, 1, pcmFormat)
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: finish %s: %w", path, err)
	}

	return f.Close()
}

func supportedDepth(bits int) bool {
	switch bits {
	case 16, 24, 32:
		return true
	default:
		return false
	}
}
