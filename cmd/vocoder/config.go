package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cwbudde/algo-vocoder/dsp/core"
	"github.com/cwbudde/algo-vocoder/dsp/signal"
)

type config struct {
	sampleRate  float64
	frames      int
	bands       int
	lowHz       float64
	highHz      float64
	gain        float64
	shift       float64
	carrier     signal.Waveform
	carrierHz   float64
	modulator   signal.Waveform
	modulatorHz float64
	tremoloHz   float64
	duration    time.Duration
	headless    bool
}

func parseConfig(args []string, output io.Writer) (config, error) {
	fs := flag.NewFlagSet("vocoder", flag.ContinueOnError)
	fs.SetOutput(output)

	var cfg config

	sampleRate := fs.Int("sample-rate", int(core.DefaultSampleRate), "output sample rate in Hz")
	fs.IntVar(&cfg.frames, "frames", core.DefaultBlockSize, "frames per processing block")
	fs.IntVar(&cfg.bands, "bands", 30, "number of vocoder bands")
	fs.Float64Var(&cfg.lowHz, "low", 200, "lowest band edge in Hz")
	fs.Float64Var(&cfg.highHz, "high", 5000, "highest band edge in Hz")
	fs.Float64Var(&cfg.gain, "gain", 20, "makeup gain, applied as gain/bands")
	fs.Float64Var(&cfg.shift, "shift", 1, "carrier band frequency ratio")
	carrier := fs.String("carrier", "saw", "carrier waveform (sine, saw, square, noise)")
	fs.Float64Var(&cfg.carrierHz, "carrier-freq", 110, "carrier frequency in Hz")
	modulator := fs.String("modulator", "noise", "modulator waveform (sine, saw, square, noise)")
	fs.Float64Var(&cfg.modulatorHz, "modulator-freq", 0, "modulator frequency in Hz")
	fs.Float64Var(&cfg.tremoloHz, "tremolo", 2, "modulator tremolo rate in Hz (0 disables)")
	fs.DurationVar(&cfg.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	fs.BoolVar(&cfg.headless, "headless", false, "pull the stream without an audio device, then print the report")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: vocoder [flags]\n\n")
		fmt.Fprintf(output, "Plays a carrier oscillator shaped by a modulator oscillator through a channel vocoder.\n\n")
		fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg.sampleRate = float64(*sampleRate)

	var err error
	if cfg.carrier, err = signal.ParseWaveform(*carrier); err != nil {
		return config{}, fmt.Errorf("-carrier: %w", err)
	}

	if cfg.modulator, err = signal.ParseWaveform(*modulator); err != nil {
		return config{}, fmt.Errorf("-modulator: %w", err)
	}

	if cfg.tremoloHz < 0 {
		return config{}, fmt.Errorf("-tremolo must be >= 0: %g", cfg.tremoloHz)
	}

	if cfg.duration < 0 {
		return config{}, fmt.Errorf("-duration must be >= 0: %v", cfg.duration)
	}

	return cfg, nil
}
