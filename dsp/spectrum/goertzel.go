package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vocoder/dsp/core"
)

// ErrInvalidFrequency is returned for tone frequencies outside [0, sampleRate/2).
var ErrInvalidFrequency = errors.New("spectrum: frequency must be in [0, sampleRate/2)")

// Goertzel measures the level of one frequency across any number of blocks,
// one second-order recurrence per sample. It is cheaper than an FFT when only
// a single tone matters.
type Goertzel struct {
	freqHz     float64
	sampleRate float64
	coeff      float64
	s1, s2     float64
	samples    int
}

// NewGoertzel creates a detector for freqHz.
func NewGoertzel(freqHz, sampleRate float64) (*Goertzel, error) {
	stream := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: core.DefaultBlockSize}
	if err := stream.Validate(); err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	if !core.IsFinite(freqHz) || freqHz < 0 || freqHz >= stream.Nyquist() {
		return nil, fmt.Errorf("%w: %g Hz at %g Hz", ErrInvalidFrequency, freqHz, sampleRate)
	}

	return &Goertzel{
		freqHz:     freqHz,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*freqHz/sampleRate),
	}, nil
}

// Write feeds block into the detector.
func (g *Goertzel) Write(block []float64) {
	s1, s2, k := g.s1, g.s2, g.coeff

	for _, x := range block {
		s1, s2 = x+k*s1-s2, s1
	}

	g.s1, g.s2 = s1, s2
	g.samples += len(block)
}

// Power returns |X(f)|^2 over everything written since the last Reset.
func (g *Goertzel) Power() float64 {
	return g.s1*g.s1 + g.s2*g.s2 - g.coeff*g.s1*g.s2
}

// Amplitude returns the peak amplitude of a sine at the detector frequency
// that would produce the measured power. A tone that completes a whole
// number of cycles reads exactly; others read low.
func (g *Goertzel) Amplitude() float64 {
	if g.samples == 0 {
		return 0
	}

	scale := 2 / float64(g.samples)
	if g.freqHz == 0 {
		scale /= 2
	}

	return scale * math.Sqrt(math.Max(g.Power(), 0))
}

// Reset discards everything written so far.
func (g *Goertzel) Reset() {
	g.s1, g.s2, g.samples = 0, 0, 0
}

// Frequency returns the detector frequency in Hz.
func (g *Goertzel) Frequency() float64 { return g.freqHz }

// ToneAmplitude measures the amplitude of freqHz in frame.
func ToneAmplitude(frame []float64, freqHz, sampleRate float64) (float64, error) {
	g, err := NewGoertzel(freqHz, sampleRate)
	if err != nil {
		return 0, err
	}

	g.Write(frame)

	return g.Amplitude(), nil
}
