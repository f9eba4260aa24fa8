package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/algo-vocoder/dsp/core"
)

const twoPi = 2 * math.Pi

// Waveform selects the shape an Oscillator produces.
type Waveform int

const (
	// Sine produces sin(phase).
	Sine Waveform = iota
	// Sawtooth rises linearly from -1 to 1 over each period.
	Sawtooth
	// Square is +1 for the first half period and -1 for the second.
	Square
	// Noise produces seeded uniform white noise in [-1, 1).
	Noise
)

var (
	// ErrUnknownWaveform is returned for waveform names or values outside the
	// supported set.
	ErrUnknownWaveform = errors.New("signal: unknown waveform")
	// ErrInvalidFrequency is returned for frequencies outside [0, Nyquist).
	ErrInvalidFrequency = errors.New("signal: frequency must be in [0, sampleRate/2)")
)

// String returns the lower-case waveform name accepted by ParseWaveform.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Sawtooth:
		return "sawtooth"
	case Square:
		return "square"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

func (w Waveform) valid() bool {
	return w >= Sine && w <= Noise
}

// ParseWaveform maps a case-insensitive name ("sine", "sawtooth" or "saw",
// "square", "noise") to a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "square":
		return Square, nil
	case "noise", "white":
		return Noise, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownWaveform, name)
	}
}

// Oscillator is a phase-accumulating tone source:
//
//	phase = (phase + 2*pi*f/fs) mod 2*pi
//
// Noise ignores the phase but still advances it so switching waveforms keeps
// the oscillator in time. An Oscillator is not safe for concurrent use.
type Oscillator struct {
	waveform   Waveform
	freqHz     float64
	sampleRate float64
	step       float64
	phase      float64

	seed  int64
	rng   *rand.Rand
	noise float64
}

// NewOscillator creates an oscillator at phase 0. The sample rate comes from
// opts and defaults to core.DefaultSampleRate.
func NewOscillator(w Waveform, freqHz float64, opts ...core.ProcessorOption) (*Oscillator, error) {
	cfg := core.ApplyProcessorOptions(opts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("signal: %w", err)
	}

	if !w.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWaveform, int(w))
	}

	o := &Oscillator{
		waveform:   w,
		sampleRate: cfg.SampleRate,
		seed:       1,
		rng:        rand.New(rand.NewSource(1)),
	}

	if err := o.SetFrequency(freqHz); err != nil {
		return nil, err
	}

	return o, nil
}

// SetFrequency changes the frequency without resetting the phase.
func (o *Oscillator) SetFrequency(freqHz float64) error {
	if freqHz < 0 || freqHz >= o.sampleRate/2 || math.IsNaN(freqHz) {
		return fmt.Errorf("%w: %g Hz at %g Hz", ErrInvalidFrequency, freqHz, o.sampleRate)
	}

	o.freqHz = freqHz
	o.step = twoPi * freqHz / o.sampleRate

	return nil
}

// SetWaveform changes the waveform without resetting the phase.
func (o *Oscillator) SetWaveform(w Waveform) error {
	if !w.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownWaveform, int(w))
	}

	o.waveform = w

	return nil
}

// Seed restarts the noise sequence from seed.
func (o *Oscillator) Seed(seed int64) {
	o.seed = seed
	o.rng.Seed(seed)
	o.noise = 0
}

// Reset returns the phase to 0 and restarts the noise sequence.
func (o *Oscillator) Reset() {
	o.phase = 0
	o.Seed(o.seed)
}

// Tick advances the phase by one sample and, for Noise, draws the next value.
func (o *Oscillator) Tick() {
	o.phase = math.Mod(o.phase+o.step, twoPi)

	if o.waveform == Noise {
		o.noise = o.rng.Float64()*2 - 1
	}
}

// Sample returns the waveform value at the current phase without advancing.
func (o *Oscillator) Sample() float64 {
	switch o.waveform {
	case Sawtooth:
		return o.phase/math.Pi - 1
	case Square:
		if o.phase < math.Pi {
			return 1
		}
		return -1
	case Noise:
		return o.noise
	default:
		return math.Sin(o.phase)
	}
}

// Next advances one sample and returns the new value.
func (o *Oscillator) Next() float64 {
	o.Tick()
	return o.Sample()
}

// Fill overwrites buf with consecutive Next values.
func (o *Oscillator) Fill(buf []float64) {
	for i := range buf {
		buf[i] = o.Next()
	}
}

// Waveform returns the current waveform.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.freqHz }

// SampleRate returns the sample rate in Hz.
func (o *Oscillator) SampleRate() float64 { return o.sampleRate }

// Phase returns the current phase in [0, 2*pi).
func (o *Oscillator) Phase() float64 { return o.phase }
