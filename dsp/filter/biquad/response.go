package biquad

import (
	"math"
	"math/cmplx"
)

// ResponseZ evaluates the transfer function H(z) at an arbitrary point of the
// z-plane. H(1) is the DC gain and H(-1) the Nyquist gain.
func (c Coefficients) ResponseZ(z complex128) complex128 {
	zi := 1 / z
	zi2 := zi * zi

	num := complex(c.B0, 0) + complex(c.B1, 0)*zi + complex(c.B2, 0)*zi2
	den := complex(1, 0) + complex(c.A1, 0)*zi + complex(c.A2, 0)*zi2
	return num / den
}

// Response computes the complex frequency response H(e^jw) at the given
// frequency (Hz) and sample rate (Hz).
func (c Coefficients) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	return c.ResponseZ(cmplx.Exp(complex(0, w)))
}

// MagnitudeSquared returns |H(f)|^2 using a closed-form expression that
// avoids complex exponentials.
func (c Coefficients) MagnitudeSquared(freqHz, sampleRate float64) float64 {
	cw := 2 * math.Cos(2*math.Pi*freqHz/sampleRate)
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	num := (b0-b2)*(b0-b2) + b1*b1 + (b1*(b0+b2)+b0*b2*cw)*cw
	den := (1-a2)*(1-a2) + a1*a1 + (a1*(a2+1)+cw*a2)*cw
	return num / den
}

// MagnitudeDB returns 10*log10(|H(f)|^2).
func (c Coefficients) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 10 * math.Log10(c.MagnitudeSquared(freqHz, sampleRate))
}

// MagnitudeDB returns the filter's magnitude response in dB at freqHz.
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return f.coeffs.MagnitudeDB(freqHz, f.sampleRate)
}
