package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-vocoder/dsp/core"
	"github.com/cwbudde/algo-vocoder/dsp/filter/bank"
)

const (
	defaultVocoderBands      = 30
	defaultVocoderLowHz      = 200.0
	defaultVocoderHighHz     = 5000.0
	defaultVocoderQScale     = 2.0
	defaultVocoderMakeupGain = 20.0
	defaultVocoderShift      = 1.0

	maxVocoderBands      = 512
	minVocoderMakeupGain = 0.0
	maxVocoderMakeupGain = 1000.0
)

// ErrBlockSize is returned by Generate when a buffer is not exactly one
// block long.
var ErrBlockSize = errors.New("vocoder: buffer length must equal block size")

// VocoderOption configures a Vocoder at construction time.
type VocoderOption func(*vocoderConfig) error

type vocoderConfig struct {
	bands        int
	lowHz        float64
	highHz       float64
	qScale       float64
	carrierQ     float64 // 0 follows qScale
	makeupGain   float64
	carrierShift float64
	blockSize    int
}

func defaultVocoderConfig() vocoderConfig {
	return vocoderConfig{
		bands:        defaultVocoderBands,
		lowHz:        defaultVocoderLowHz,
		highHz:       defaultVocoderHighHz,
		qScale:       defaultVocoderQScale,
		makeupGain:   defaultVocoderMakeupGain,
		carrierShift: defaultVocoderShift,
		blockSize:    core.DefaultBlockSize,
	}
}

// WithVocoderBands sets the number of bands in each filter bank.
func WithVocoderBands(n int) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if n < 1 || n > maxVocoderBands {
			return fmt.Errorf("vocoder: band count must be in [1, %d]: %d", maxVocoderBands, n)
		}

		cfg.bands = n

		return nil
	}
}

// WithVocoderRange sets the partitioned frequency range [low, high) in Hz.
func WithVocoderRange(low, high float64) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if !core.IsFinite(low) || !core.IsFinite(high) || low <= 0 || high <= low {
			return fmt.Errorf("vocoder: frequency range must satisfy 0 < low < high: [%g, %g)", low, high)
		}

		cfg.lowHz = low
		cfg.highHz = high

		return nil
	}
}

// WithVocoderBlockSize sets the fixed number of frames per Generate call.
func WithVocoderBlockSize(frames int) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if frames < 2 {
			return fmt.Errorf("vocoder: block size must be >= 2: %d", frames)
		}

		cfg.blockSize = frames

		return nil
	}
}

// WithVocoderMakeupGain sets G in the final output *= G/N scaling.
func WithVocoderMakeupGain(gain float64) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if gain < minVocoderMakeupGain || gain > maxVocoderMakeupGain || math.IsNaN(gain) {
			return fmt.Errorf("vocoder: makeup gain must be in [%g, %g]: %g",
				minVocoderMakeupGain, maxVocoderMakeupGain, gain)
		}

		cfg.makeupGain = gain

		return nil
	}
}

// WithVocoderQScale sets the factor applied to each band's
// bandwidth-derived Q in both banks.
func WithVocoderQScale(scale float64) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if scale <= 0 || !core.IsFinite(scale) {
			return fmt.Errorf("vocoder: Q scale must be > 0: %g", scale)
		}

		cfg.qScale = scale

		return nil
	}
}

// WithCarrierQScale sets a Q scale for the carrier bank alone, leaving the
// modulator bank at the shared WithVocoderQScale value.
func WithCarrierQScale(scale float64) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if scale <= 0 || !core.IsFinite(scale) {
			return fmt.Errorf("vocoder: carrier Q scale must be > 0: %g", scale)
		}

		cfg.carrierQ = scale

		return nil
	}
}

// WithCarrierShift detunes the carrier bank by multiplying its center
// frequencies by ratio. The modulator bank is unaffected, so band i of the
// modulator drives a carrier region ratio times higher (or lower).
func WithCarrierShift(ratio float64) VocoderOption {
	return func(cfg *vocoderConfig) error {
		if ratio <= 0 || !core.IsFinite(ratio) {
			return fmt.Errorf("vocoder: carrier shift must be > 0: %g", ratio)
		}

		cfg.carrierShift = ratio

		return nil
	}
}

// Vocoder imposes the per-band envelope of a modulator onto a carrier.
//
// Each block, both inputs are split by their own bank; band i of the
// modulator yields the envelope E_i, its peak positive sample in the block,
// and band i of the carrier is scaled by E_i. The scaled carrier bands are
// added into the output, which is then multiplied by makeupGain/N.
//
// A Vocoder is not safe for concurrent use and must be fed one continuous
// pair of signals.
type Vocoder struct {
	sampleRate float64
	blockSize  int
	makeupGain float64

	modulatorBank *bank.Bank
	carrierBank   *bank.Bank

	// Per-band scratch, N x blockSize, overwritten every block.
	modulatorFiltered [][]float64
	carrierFiltered   [][]float64

	envelopes   []float64
	outputScale float64 // makeupGain / N
}

// NewVocoder creates a Vocoder for a stream at sampleRate. Defaults: 30
// bands over 200..5000 Hz, Q scale 2, 256-frame blocks, makeup gain 20.
func NewVocoder(sampleRate float64, opts ...VocoderOption) (*Vocoder, error) {
	cfg := defaultVocoderConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	stream := core.ProcessorConfig{SampleRate: sampleRate, BlockSize: cfg.blockSize}
	if err := stream.Validate(); err != nil {
		return nil, fmt.Errorf("vocoder: %w", err)
	}

	bankOpts := []bank.Option{
		bank.WithBands(cfg.bands),
		bank.WithFrequencyRange(cfg.lowHz, cfg.highHz),
		bank.WithQScale(cfg.qScale),
	}

	modulatorBank, err := bank.New(sampleRate, bankOpts...)
	if err != nil {
		return nil, fmt.Errorf("vocoder: modulator bank: %w", err)
	}

	carrierOpts := append(bankOpts, bank.WithShift(cfg.carrierShift))
	if cfg.carrierQ > 0 {
		carrierOpts = append(carrierOpts, bank.WithQScale(cfg.carrierQ))
	}

	carrierBank, err := bank.New(sampleRate, carrierOpts...)
	if err != nil {
		return nil, fmt.Errorf("vocoder: carrier bank: %w", err)
	}

	n := modulatorBank.NumBands()

	v := &Vocoder{
		sampleRate:        sampleRate,
		blockSize:         cfg.blockSize,
		makeupGain:        cfg.makeupGain,
		modulatorBank:     modulatorBank,
		carrierBank:       carrierBank,
		modulatorFiltered: core.NewBlocks(n, cfg.blockSize),
		carrierFiltered:   core.NewBlocks(n, cfg.blockSize),
		envelopes:         make([]float64, n),
		outputScale:       cfg.makeupGain / float64(n),
	}

	return v, nil
}

// Generate vocodes one block. modulator, carrier and output must each be
// exactly BlockSize samples long; otherwise ErrBlockSize is returned and no
// state changes.
//
// The vocoded bands are added to whatever output already holds, and the
// makeup gain is then applied to the whole buffer. Callers that want a fresh
// block must zero output first.
func (v *Vocoder) Generate(output, modulator, carrier []float64) error {
	if len(output) != v.blockSize || len(modulator) != v.blockSize || len(carrier) != v.blockSize {
		return fmt.Errorf("%w: output=%d modulator=%d carrier=%d, want %d",
			ErrBlockSize, len(output), len(modulator), len(carrier), v.blockSize)
	}

	if err := v.modulatorBank.Process(v.modulatorFiltered, modulator); err != nil {
		return fmt.Errorf("vocoder: modulator: %w", err)
	}

	if err := v.carrierBank.Process(v.carrierFiltered, carrier); err != nil {
		return fmt.Errorf("vocoder: carrier: %w", err)
	}

	for i, band := range v.carrierFiltered {
		env := core.PeakPositive(v.modulatorFiltered[i])
		v.envelopes[i] = env

		vecmath.ScaleBlockInPlace(band, env)
		vecmath.AddBlockInPlace(output, band)
	}

	vecmath.ScaleBlockInPlace(output, v.outputScale)

	return nil
}

// Envelopes appends the envelopes measured by the most recent Generate call
// to dst[:0] and returns the result, one value per band in ascending
// frequency order.
func (v *Vocoder) Envelopes(dst []float64) []float64 {
	return append(dst[:0], v.envelopes...)
}

// Reset clears all filter state, envelopes and scratch buffers.
func (v *Vocoder) Reset() {
	v.modulatorBank.Reset()
	v.carrierBank.Reset()

	for i := range v.envelopes {
		v.envelopes[i] = 0
		core.Zero(v.modulatorFiltered[i])
		core.Zero(v.carrierFiltered[i])
	}
}

// SampleRate returns the stream sample rate in Hz.
func (v *Vocoder) SampleRate() float64 { return v.sampleRate }

// BlockSize returns the number of frames per Generate call.
func (v *Vocoder) BlockSize() int { return v.blockSize }

// NumBands returns the number of bands per bank.
func (v *Vocoder) NumBands() int { return len(v.envelopes) }

// MakeupGain returns G, the gain applied as G/N after band summation.
func (v *Vocoder) MakeupGain() float64 { return v.makeupGain }

// QScale returns the modulator bank's Q scale.
func (v *Vocoder) QScale() float64 { return v.modulatorBank.QScale() }

// CarrierQScale returns the carrier bank's Q scale.
func (v *Vocoder) CarrierQScale() float64 { return v.carrierBank.QScale() }

// ModulatorBands returns the modulator bank's partition.
func (v *Vocoder) ModulatorBands() []bank.Band { return v.modulatorBank.Bands() }

// CarrierBands returns the carrier bank's partition. Any carrier shift is
// applied to the filters, not to the reported bands.
func (v *Vocoder) CarrierBands() []bank.Band { return v.carrierBank.Bands() }

// CarrierShift returns the carrier bank's center frequency ratio.
func (v *Vocoder) CarrierShift() float64 { return v.carrierBank.Shift() }
