package spectrum

import (
	"math/cmplx"
	"testing"
)

func BenchmarkMagnitude(b *testing.B) {
	sizes := []struct {
		name string
		size int
	}{
		{"256", 256},
		{"513", 513},
		{"1K", 1024},
		{"4K", 4096},
	}

	for _, testCase := range sizes {
		b.Run(testCase.name, func(b *testing.B) {
			inData := make([]complex128, testCase.size)
			for i := range inData {
				inData[i] = complex(float64(i)/10.0, float64(testCase.size-i)/10.0)
			}

			b.SetBytes(int64(testCase.size * 16)) // complex128 = 16 bytes
			b.ResetTimer()

			for range b.N {
				_ = Magnitude(inData)
			}
		})
	}
}

func magnitudeNaive(inData []complex128) []float64 {
	out := make([]float64, len(inData))
	for i, c := range inData {
		out[i] = cmplx.Abs(c)
	}
	return out
}

func BenchmarkMagnitudeNaive(b *testing.B) {
	inData := make([]complex128, 1024)
	for i := range inData {
		inData[i] = complex(float64(i)/10.0, float64(1024-i)/10.0)
	}

	b.SetBytes(int64(len(inData) * 16))
	b.ResetTimer()

	for range b.N {
		_ = magnitudeNaive(inData)
	}
}

func BenchmarkZeroPhase(b *testing.B) {
	frame := make([]float64, 801)
	buf := make([]float64, 1024)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		_ = ZeroPhase(buf, frame)
	}
}
