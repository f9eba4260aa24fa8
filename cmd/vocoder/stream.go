package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/algo-vocoder/dsp/core"
	"github.com/cwbudde/algo-vocoder/dsp/effects"
	"github.com/cwbudde/algo-vocoder/dsp/signal"
)

const bytesPerSample = 4 // mono float32

// stream renders vocoded audio on demand. Read is called from the audio
// driver's goroutine; the meter is read from main once playback stops.
type stream struct {
	vocoder   *effects.Vocoder
	modulator *signal.Oscillator
	carrier   *signal.Oscillator
	tremolo   *signal.Oscillator // nil when disabled

	modBlock []float64
	carBlock []float64
	outBlock []float64

	encoded []byte
	pending []byte

	mu     sync.Mutex
	meter  *meter
	frames int64
}

func newStream(cfg config) (*stream, error) {
	v, err := effects.NewVocoder(cfg.sampleRate,
		effects.WithVocoderBlockSize(cfg.frames),
		effects.WithVocoderBands(cfg.bands),
		effects.WithVocoderRange(cfg.lowHz, cfg.highHz),
		effects.WithVocoderMakeupGain(cfg.gain),
		effects.WithCarrierShift(cfg.shift),
	)
	if err != nil {
		return nil, err
	}

	rate := core.WithSampleRate(cfg.sampleRate)

	modulator, err := signal.NewOscillator(cfg.modulator, cfg.modulatorHz, rate)
	if err != nil {
		return nil, fmt.Errorf("modulator: %w", err)
	}

	carrier, err := signal.NewOscillator(cfg.carrier, cfg.carrierHz, rate)
	if err != nil {
		return nil, fmt.Errorf("carrier: %w", err)
	}
	carrier.Seed(2)

	s := &stream{
		vocoder:   v,
		modulator: modulator,
		carrier:   carrier,
		modBlock:  make([]float64, cfg.frames),
		carBlock:  make([]float64, cfg.frames),
		outBlock:  make([]float64, cfg.frames),
		encoded:   make([]byte, cfg.frames*bytesPerSample),
		meter:     newMeter(cfg.sampleRate, spectrumSize, 0),
	}

	if cfg.carrier != signal.Noise {
		s.meter.toneHz = cfg.carrierHz
	}

	if cfg.tremoloHz > 0 {
		s.tremolo, err = signal.NewOscillator(signal.Sine, cfg.tremoloHz, rate)
		if err != nil {
			return nil, fmt.Errorf("tremolo: %w", err)
		}
	}

	return s, nil
}

// Read implements io.Reader, producing float32 little-endian mono PCM. The
// stream is endless; the only error is io.ErrShortBuffer for p shorter than
// one sample.
func (s *stream) Read(p []byte) (int, error) {
	if len(p) < bytesPerSample {
		return 0, io.ErrShortBuffer
	}

	n := 0
	for n+bytesPerSample <= len(p) {
		if len(s.pending) == 0 {
			if err := s.renderBlock(); err != nil {
				return n, err
			}
		}

		c := copy(p[n:], s.pending)
		c -= c % bytesPerSample
		s.pending = s.pending[c:]
		n += c
	}

	return n, nil
}

func (s *stream) renderBlock() error {
	s.modulator.Fill(s.modBlock)
	s.carrier.Fill(s.carBlock)

	if s.tremolo != nil {
		for i := range s.modBlock {
			s.modBlock[i] *= 0.5 * (1 + s.tremolo.Next())
		}
	}

	core.Zero(s.outBlock)

	if err := s.vocoder.Generate(s.outBlock, s.modBlock, s.carBlock); err != nil {
		return err
	}

	for i, x := range s.outBlock {
		binary.LittleEndian.PutUint32(s.encoded[i*bytesPerSample:], math.Float32bits(float32(x)))
	}
	s.pending = s.encoded

	s.mu.Lock()
	s.meter.add(s.outBlock)
	s.frames += int64(len(s.outBlock))
	s.mu.Unlock()

	return nil
}

// report snapshots the meter.
func (s *stream) report() (report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.meter.report()
	r.frames = s.frames

	return r, err
}
