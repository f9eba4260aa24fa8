package main

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/algo-vocoder/dsp/spectrum"
	"github.com/meko-christian/algo-approx"
)

const (
	spectrumSize = 4096
	ln10         = 2.302585092994045684017991454684
	silenceDB    = -144.0
)

// meter tracks the output peak and keeps the most recent spectrumSize
// samples for a closing spectrum and carrier tone level. toneHz 0 skips the
// tone measurement.
type meter struct {
	sampleRate float64
	toneHz     float64
	peak       float64
	tail       []float64 // ring buffer
	pos        int
	filled     bool
}

type report struct {
	frames   int64
	peakDBFS float64
	peakHz   float64
	toneHz   float64
	toneDBFS float64
}

func newMeter(sampleRate float64, size int, toneHz float64) *meter {
	return &meter{sampleRate: sampleRate, toneHz: toneHz, tail: make([]float64, size)}
}

func (m *meter) add(block []float64) {
	m.peak = math.Max(m.peak, vecmath.MaxAbs(block))

	for _, x := range block {
		m.tail[m.pos] = x
		m.pos++
		if m.pos == len(m.tail) {
			m.pos = 0
			m.filled = true
		}
	}
}

// dbfs converts a linear peak to dB relative to full scale.
func dbfs(peak float64) float64 {
	if peak <= 0 {
		return silenceDB
	}

	return math.Max(20*approx.FastLog(peak)/ln10, silenceDB)
}

func (m *meter) report() (report, error) {
	r := report{peakDBFS: dbfs(m.peak)}

	if !m.filled {
		return r, nil
	}

	frame := make([]float64, len(m.tail))
	n := copy(frame, m.tail[m.pos:])
	copy(frame[n:], m.tail[:m.pos])

	a, err := spectrum.NewAnalyzer(len(frame))
	if err != nil {
		return r, err
	}

	mag, err := a.Magnitude(nil, frame)
	if err != nil {
		return r, err
	}

	r.peakHz = spectrum.PeakFrequency(mag, len(frame), m.sampleRate)

	if m.toneHz > 0 {
		amp, err := spectrum.ToneAmplitude(frame, m.toneHz, m.sampleRate)
		if err != nil {
			return r, err
		}

		r.toneHz = m.toneHz
		r.toneDBFS = dbfs(amp)
	}

	return r, nil
}
