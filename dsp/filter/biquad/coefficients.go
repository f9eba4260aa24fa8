package biquad

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates.
	ErrInvalidSampleRate = errors.New("biquad: sample rate must be > 0")
	// ErrInvalidFrequency is returned when a center frequency is not in (0, fs/2).
	ErrInvalidFrequency = errors.New("biquad: center frequency must be in (0, sampleRate/2)")
	// ErrInvalidQ is returned for non-positive or non-finite quality factors.
	ErrInvalidQ = errors.New("biquad: Q must be > 0")
	// ErrBlockTooShort is returned when a block holds fewer than two samples.
	ErrBlockTooShort = errors.New("biquad: block must hold at least 2 samples")
	// ErrLengthMismatch is returned when input and output lengths differ.
	ErrLengthMismatch = errors.New("biquad: buffer length mismatch")
)

// Coefficients holds the transfer function coefficients for a single
// second-order section. a0 is normalized to 1 and not stored.
//
//	H(z) = (B0 + B1*z^-1 + B2*z^-2) / (1 + A1*z^-1 + A2*z^-2)
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns pass-through coefficients (B0 = 1).
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// BandpassCoefficients designs a second-order bandpass section with the
// bilinear transform, pre-warping the center frequency:
//
//	w0   = tan(pi * fc / fs)
//	norm = 1 / (1 + w0/Q + w0^2)
//	B0   = w0/Q * norm, B1 = 0, B2 = -B0
//	A1   = 2 * (w0^2 - 1) * norm
//	A2   = (1 - w0/Q + w0^2) * norm
//
// The response is zero at DC and Nyquist and exactly unity at fc; Q only sets
// the -3 dB bandwidth (fc/Q). w0 diverges as fc approaches Nyquist, so fc must
// lie strictly inside (0, fs/2).
func BandpassCoefficients(centerHz, q, sampleRate float64) (Coefficients, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Coefficients{}, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if centerHz <= 0 || centerHz >= sampleRate/2 || math.IsNaN(centerHz) || math.IsInf(centerHz, 0) {
		return Coefficients{}, fmt.Errorf("%w: %v Hz at %v Hz", ErrInvalidFrequency, centerHz, sampleRate)
	}

	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return Coefficients{}, fmt.Errorf("%w: %v", ErrInvalidQ, q)
	}

	w0 := math.Tan(math.Pi * centerHz / sampleRate)
	w0q := w0 / q
	w02 := w0 * w0
	norm := 1 / (1 + w0q + w02)

	b0 := w0q * norm

	return Coefficients{
		B0: b0,
		B1: 0,
		B2: -b0,
		A1: 2 * (w02 - 1) * norm,
		A2: (1 - w0q + w02) * norm,
	}, nil
}
