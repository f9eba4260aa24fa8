// Package biquad provides the second-order IIR bandpass filter used by the
// vocoder filter banks.
//
// A [Filter] owns its [Coefficients] and an explicit [State] holding the last
// two input and output samples of the previous block. Blocks are processed
// with the direct-form I recurrence
//
//	y[n] = B0*x[n] + B1*x[n-1] + B2*x[n-2] - A1*y[n-1] - A2*y[n-2]
//
// seeded from that state, so splitting a signal into consecutive blocks
// yields the same output as filtering it in one call.
//
// Coefficients come from [BandpassCoefficients], the bilinear-transform
// bandpass with unity gain at the center frequency.
// Design inputs are validated; block inputs shorter than two samples or with
// mismatched lengths are rejected with an error instead of being read out of
// bounds.
//
// A filter must only ever see one continuous, chronologically ordered signal.
// It is not safe for concurrent use.
package biquad
