package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-vocoder/dsp/filter/bank"
)

var (
	// ErrInvalidSize is returned for FFT sizes that are not a power of two >= 2.
	ErrInvalidSize = errors.New("spectrum: FFT size must be a power of two >= 2")
	// ErrInputTooLong is returned when a frame exceeds the FFT size.
	ErrInputTooLong = errors.New("spectrum: input longer than FFT size")
)

// Magnitude computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
// All three slices must have the same length.
func Magnitude(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// Analyzer computes one-sided magnitude spectra of real frames with a fixed
// FFT size. Buffers are allocated once; an Analyzer is not safe for
// concurrent use.
type Analyzer struct {
	size int
	plan *algofft.Plan[complex128]
	in   []complex128
	out  []complex128
	re   []float64
	im   []float64
}

// NewAnalyzer creates an Analyzer for frames of up to size samples.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: create FFT plan: %w", err)
	}

	bins := size/2 + 1

	return &Analyzer{
		size: size,
		plan: plan,
		in:   make([]complex128, size),
		out:  make([]complex128, size),
		re:   make([]float64, bins),
		im:   make([]float64, bins),
	}, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Bins returns the number of one-sided bins, size/2 + 1.
func (a *Analyzer) Bins() int { return a.size/2 + 1 }

// Magnitude transforms frame (zero-padded to the FFT size) and writes the
// size/2+1 magnitudes into dst, reusing its capacity. Bins are scaled so a
// sine that lands on a bin reads its amplitude; DC and Nyquist read the
// amplitude of a constant and of an alternating sequence.
func (a *Analyzer) Magnitude(dst, frame []float64) ([]float64, error) {
	if len(frame) > a.size {
		return nil, fmt.Errorf("%w: %d > %d", ErrInputTooLong, len(frame), a.size)
	}

	for i := range a.in {
		if i < len(frame) {
			a.in[i] = complex(frame[i], 0)
		} else {
			a.in[i] = 0
		}
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectrum: forward FFT: %w", err)
	}

	scale := 2 / float64(a.size)
	for k := range a.re {
		a.re[k] = real(a.out[k]) * scale
		a.im[k] = imag(a.out[k]) * scale
	}

	// DC and Nyquist have no mirrored bin.
	last := len(a.re) - 1
	a.re[0], a.im[0] = a.re[0]/2, a.im[0]/2
	a.re[last], a.im[last] = a.re[last]/2, a.im[last]/2

	bins := a.Bins()
	if cap(dst) < bins {
		dst = make([]float64, bins)
	}
	dst = dst[:bins]

	Magnitude(dst, a.re, a.im)

	return dst, nil
}

// BinFrequency returns the center frequency of bin k for an FFT of size
// samples at sampleRate.
func BinFrequency(k, size int, sampleRate float64) float64 {
	return float64(k) * sampleRate / float64(size)
}

// PeakFrequency returns the frequency of the largest bin in a one-sided
// magnitude spectrum, ignoring DC. Returns 0 for spectra without energy.
func PeakFrequency(mag []float64, size int, sampleRate float64) float64 {
	peak := 0
	best := 0.0
	for k := 1; k < len(mag); k++ {
		if mag[k] > best {
			best = mag[k]
			peak = k
		}
	}

	return BinFrequency(peak, size, sampleRate)
}

// BandLevels returns the RMS magnitude of the bins that fall in each band's
// [Low, High) range. Bands that contain no bin report 0.
func BandLevels(mag []float64, size int, sampleRate float64, bands []bank.Band) []float64 {
	out := make([]float64, len(bands))
	for i, b := range bands {
		sum := 0.0
		n := 0

		for k := range mag {
			if b.Contains(BinFrequency(k, size, sampleRate)) {
				sum += mag[k] * mag[k]
				n++
			}
		}

		if n > 0 {
			out[i] = math.Sqrt(sum / float64(n))
		}
	}

	return out
}
