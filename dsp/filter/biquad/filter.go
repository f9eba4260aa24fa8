//nolint:funcorder
package biquad

import (
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
	archregistry "github.com/cwbudde/algo-vocoder/dsp/filter/biquad/internal/arch/registry"
)

// State is the recurrence memory carried from one block to the next: the
// final two input samples (X1 newest) and final two output samples (Y1
// newest) of the most recently processed block.
type State struct {
	X1, X2 float64
	Y1, Y2 float64
}

// Filter is a single biquad bandpass with persistent cross-block state.
// Each Filter belongs to exactly one band of one signal path.
type Filter struct {
	sampleRate float64
	coeffs     Coefficients
	state      State
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockInitOnce sync.Once
)

// NewFilter returns a Filter with identity coefficients and zero state.
func NewFilter(sampleRate float64) (*Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	return &Filter{sampleRate: sampleRate, coeffs: Identity()}, nil
}

// NewBandpass returns a Filter configured as a bandpass at centerHz with the
// given Q.
func NewBandpass(sampleRate, centerHz, q float64) (*Filter, error) {
	f, err := NewFilter(sampleRate)
	if err != nil {
		return nil, err
	}

	if err := f.SetBandpass(centerHz, q); err != nil {
		return nil, err
	}

	return f, nil
}

// SetBandpass configures the filter as a bandpass at centerHz.
// On error the filter is left unchanged. Coefficients are meant to be set
// once, before the first block; retuning mid-stream is not interpolated.
func (f *Filter) SetBandpass(centerHz, q float64) error {
	c, err := BandpassCoefficients(centerHz, q, f.sampleRate)
	if err != nil {
		return err
	}

	f.coeffs = c

	return nil
}

// Process filters src into dst. Both slices must have the same length of at
// least two samples; dst may alias src. Every sample of dst is overwritten.
// Invalid input is rejected before any state changes.
func (f *Filter) Process(dst, src []float64) error {
	if len(src) < 2 {
		return fmt.Errorf("%w: got %d", ErrBlockTooShort, len(src))
	}

	if len(dst) != len(src) {
		return fmt.Errorf("%w: dst=%d src=%d", ErrLengthMismatch, len(dst), len(src))
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	f.state = State(processBlockImpl(archregistry.Coefficients(f.coeffs), archregistry.State(f.state), dst, src))

	return nil
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
}

// ProcessSample filters one input sample and returns the output.
func (f *Filter) ProcessSample(x float64) float64 {
	c := &f.coeffs
	s := &f.state
	y := c.B0*x + c.B1*s.X1 + c.B2*s.X2 - c.A1*s.Y1 - c.A2*s.Y2
	s.X2, s.X1 = s.X1, x
	s.Y2, s.Y1 = s.Y1, y

	return y
}

// Reset clears the recurrence state to zero.
func (f *Filter) Reset() {
	f.state = State{}
}

// State returns the current recurrence state.
func (f *Filter) State() State {
	return f.state
}

// SetState restores a previously saved recurrence state.
func (f *Filter) SetState(s State) {
	f.state = s
}

// Coefficients returns the installed coefficients.
func (f *Filter) Coefficients() Coefficients {
	return f.coeffs
}

// SampleRate returns the sample rate the filter was built for.
func (f *Filter) SampleRate() float64 {
	return f.sampleRate
}
