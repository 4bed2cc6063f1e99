// Package resample provides spectral (Fourier-domain) resampling of finite
// sequences.
//
// [Fourier] treats the input as one period of a periodic signal, truncates or
// zero-pads its DFT to the requested length and transforms back. It is used to
// decimate and re-interpolate spectral envelopes, where the sequence is short
// and the band-limited periodic assumption holds.
//
// Nyquist handling for even lengths follows the usual split/join convention:
// when shrinking, the +N/2 and -N/2 components are summed into the new
// Nyquist bin; when growing, the old Nyquist component is split evenly
// between +N/2 and -N/2.
package resample
