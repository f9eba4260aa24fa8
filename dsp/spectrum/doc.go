// Package spectrum measures where signal energy sits in frequency.
//
// [Analyzer] wraps a reusable algo-fft plan and returns one-sided magnitude
// spectra; [BandLevels] folds such a spectrum onto the bins of a constant-Q
// partition so vocoder input and output can be compared band by band.
// [Goertzel] evaluates single frequencies without a full transform.
package spectrum
