package bank

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-vocoder/dsp/core"
	"github.com/cwbudde/algo-vocoder/dsp/filter/biquad"
)

const (
	defaultBands     = 30
	defaultLowerFreq = 200.0
	defaultUpperFreq = 5000.0
	defaultQScale    = 2.0
	defaultShift     = 1.0
)

var (
	// ErrInvalidBandCount is returned when fewer than one band is requested.
	ErrInvalidBandCount = errors.New("bank: band count must be >= 1")
	// ErrInvalidRange is returned for non-positive, non-finite or empty ranges.
	ErrInvalidRange = errors.New("bank: frequency range must satisfy 0 < low < high")
	// ErrInvalidQScale is returned for non-positive or non-finite Q scales.
	ErrInvalidQScale = errors.New("bank: Q scale must be > 0")
	// ErrInvalidShift is returned for non-positive or non-finite shift ratios.
	ErrInvalidShift = errors.New("bank: shift ratio must be > 0")
	// ErrBandCountMismatch is returned when the number of output rows is not
	// the bank's band count.
	ErrBandCountMismatch = errors.New("bank: output band count mismatch")
)

// Band describes one bin of a log-frequency partition.
type Band struct {
	Index  int     // position in ascending frequency order
	Low    float64 // lower bin edge in Hz (inclusive)
	High   float64 // upper bin edge in Hz (exclusive)
	Center float64 // arithmetic mean of Low and High
	Q      float64 // Center / (High - Low), before any Q scaling
}

// Width returns the bin width in Hz.
func (b Band) Width() float64 { return b.High - b.Low }

// Contains reports whether freqHz lies in [Low, High).
func (b Band) Contains(freqHz float64) bool {
	return freqHz >= b.Low && freqHz < b.High
}

// Partition splits [low, high) into n bins of equal log-frequency width.
// The first bin starts exactly at low and the last ends exactly at high.
func Partition(n int, low, high float64) ([]Band, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBandCount, n)
	}

	if low <= 0 || high <= low || math.IsNaN(low) || math.IsInf(low, 0) || math.IsNaN(high) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, low, high)
	}

	logLow := math.Log(low)
	delta := (math.Log(high) - logLow) / float64(n)

	edges := make([]float64, n+1)
	edges[0] = low
	for i := 1; i < n; i++ {
		edges[i] = math.Exp(logLow + delta*float64(i))
	}
	edges[n] = high

	bands := make([]Band, n)
	for i := range bands {
		from, to := edges[i], edges[i+1]
		fc := (from + to) / 2
		bands[i] = Band{
			Index:  i,
			Low:    from,
			High:   to,
			Center: fc,
			Q:      fc / (to - from),
		}
	}

	return bands, nil
}

type bankConfig struct {
	bands   int
	lowerHz float64
	upperHz float64
	qScale  float64
	shift   float64
}

func defaultBankConfig() bankConfig {
	return bankConfig{
		bands:   defaultBands,
		lowerHz: defaultLowerFreq,
		upperHz: defaultUpperFreq,
		qScale:  defaultQScale,
		shift:   defaultShift,
	}
}

// Option configures a Bank.
type Option func(*bankConfig) error

// WithBands sets the number of bands. Defaults to 30.
func WithBands(n int) Option {
	return func(cfg *bankConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidBandCount, n)
		}

		cfg.bands = n

		return nil
	}
}

// WithFrequencyRange sets the partitioned range [lower, upper) in Hz.
// Defaults to 200..5000 Hz.
func WithFrequencyRange(lower, upper float64) Option {
	return func(cfg *bankConfig) error {
		if lower <= 0 || upper <= lower || math.IsNaN(lower) || math.IsInf(upper, 0) || math.IsNaN(upper) {
			return fmt.Errorf("%w: [%v, %v)", ErrInvalidRange, lower, upper)
		}

		cfg.lowerHz = lower
		cfg.upperHz = upper

		return nil
	}
}

// WithQScale sets the factor applied to every bin's bandwidth-derived Q.
// Defaults to 2.
func WithQScale(scale float64) Option {
	return func(cfg *bankConfig) error {
		if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidQScale, scale)
		}

		cfg.qScale = scale

		return nil
	}
}

// WithShift multiplies every filter's center frequency by ratio while
// keeping the partition (and the reported Bands) unchanged. A ratio other
// than 1 detunes a bank against an unshifted partner. Defaults to 1.
func WithShift(ratio float64) Option {
	return func(cfg *bankConfig) error {
		if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			return fmt.Errorf("%w: %v", ErrInvalidShift, ratio)
		}

		cfg.shift = ratio

		return nil
	}
}

// Bank is an ordered set of bandpass filters, one per partition bin, in
// ascending center frequency.
type Bank struct {
	bands      []Band
	filters    []*biquad.Filter
	sampleRate float64
	qScale     float64
	shift      float64
}

// New builds a constant-Q bank. Every band's (shifted) center frequency must
// fall inside (0, sampleRate/2); otherwise construction fails.
func New(sampleRate float64, opts ...Option) (*Bank, error) {
	cfg := defaultBankConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	bands, err := Partition(cfg.bands, cfg.lowerHz, cfg.upperHz)
	if err != nil {
		return nil, err
	}

	filters := make([]*biquad.Filter, len(bands))
	for i, band := range bands {
		f, err := biquad.NewBandpass(sampleRate, band.Center*cfg.shift, band.Q*cfg.qScale)
		if err != nil {
			return nil, fmt.Errorf("bank: band %d (%.1f Hz): %w", i, band.Center*cfg.shift, err)
		}

		filters[i] = f
	}

	return &Bank{
		bands:      bands,
		filters:    filters,
		sampleRate: sampleRate,
		qScale:     cfg.qScale,
		shift:      cfg.shift,
	}, nil
}

// Bands returns a copy of the partition, ordered low to high frequency.
func (b *Bank) Bands() []Band {
	out := make([]Band, len(b.bands))
	copy(out, b.bands)
	return out
}

// NumBands returns the number of bands.
func (b *Bank) NumBands() int { return len(b.bands) }

// SampleRate returns the sample rate the bank was built for.
func (b *Bank) SampleRate() float64 { return b.sampleRate }

// QScale returns the factor applied to each bin's Q.
func (b *Bank) QScale() float64 { return b.qScale }

// Shift returns the center frequency ratio applied to every filter.
func (b *Bank) Shift() float64 { return b.shift }

// Filter returns the filter of band i. The returned filter is owned by the
// bank; processing through it directly advances the bank's state.
func (b *Bank) Filter(i int) *biquad.Filter { return b.filters[i] }

// Process runs band i's filter over src into dst[i] for every band.
// dst must have one row per band, each as long as src. All shapes are
// checked before any filter state advances.
func (b *Bank) Process(dst [][]float64, src []float64) error {
	if len(dst) != len(b.filters) {
		return fmt.Errorf("%w: got %d rows, want %d", ErrBandCountMismatch, len(dst), len(b.filters))
	}

	if len(src) < 2 {
		return fmt.Errorf("bank: %w: got %d", biquad.ErrBlockTooShort, len(src))
	}

	for i, row := range dst {
		if len(row) != len(src) {
			return fmt.Errorf("bank: band %d: %w: dst=%d src=%d", i, biquad.ErrLengthMismatch, len(row), len(src))
		}
	}

	for i, f := range b.filters {
		if err := f.Process(dst[i], src); err != nil {
			return fmt.Errorf("bank: band %d: %w", i, err)
		}
	}

	return nil
}

// Reset clears all filter states across all bands.
func (b *Bank) Reset() {
	for _, f := range b.filters {
		f.Reset()
	}
}

// Response returns the complex response of the summed band outputs at freqHz.
func (b *Bank) Response(freqHz float64) complex128 {
	var h complex128
	for _, f := range b.filters {
		h += f.Coefficients().Response(freqHz, b.sampleRate)
	}
	return h
}

// MagnitudeDB returns the summed bank response magnitude in dB at freqHz.
func (b *Bank) MagnitudeDB(freqHz float64) float64 {
	return core.LinearToDB(cmplx.Abs(b.Response(freqHz)))
}
