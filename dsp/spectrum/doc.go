// Package spectrum provides FFT-adjacent spectrum-domain utilities.
//
// The package intentionally does not implement FFT itself. It operates on
// time buffers and complex spectrum bins produced by external FFT backends and
// provides helpers for magnitude/phase extraction, zero-phase buffer
// arrangement, and conjugate-symmetric spectrum construction.
package spectrum
