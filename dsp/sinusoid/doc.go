// Package sinusoid implements the sinusoidal-model building blocks used by
// harmonic analysis: a windowed single-frame DFT with zero-phase framing,
// spectral peak picking with parabolic refinement, and synthesis of a
// sinusoid spectrum from Blackman-Harris main lobes.
//
// Magnitudes are exchanged in dB (20*log10) and phases in radians. Peak
// locations are fractional FFT bins; [Peaks] converts them to Hz.
package sinusoid
