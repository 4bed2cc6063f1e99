// Package hps implements harmonic plus stochastic analysis and synthesis of
// monophonic sounds.
//
// Each frame of the input is analysed for spectral peaks, a fundamental
// frequency and its harmonic series. The harmonics are subtracted from the
// frame spectrum, the remaining residual is reduced to a smooth magnitude
// envelope, and both parts are resynthesized by overlap-add: the harmonics
// from their Blackman-Harris main lobes, the residual as envelope-shaped noise
// with random phase.
//
// Analysis uses the configured window and FFT size; synthesis uses a fixed
// transform of Config.SynthesisSize samples with a hop of a quarter of it.
// A [Model] is single-threaded and reuses its buffers across calls.
package hps
