// Command vocoder plays a channel vocoder live through the default audio
// device.
//
// A modulator oscillator (optionally amplitude-modulated by a tremolo) shapes
// a carrier oscillator through two matching constant-Q filter banks.
//
// Usage:
//
//	vocoder [flags]
//
// Examples:
//
//	vocoder
//	vocoder -carrier saw -carrier-freq 110 -modulator noise -tremolo 3
//	vocoder -bands 16 -low 100 -high 8000 -duration 5s
//	vocoder -headless -duration 2s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	s, err := newStream(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.headless {
		err = render(ctx, s, cfg)
	} else {
		err = play(ctx, s, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	r, err := s.report()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: spectrum: %v\n", err)
	}
	printReport(os.Stderr, r, cfg)
}

// play streams s to the default output device until ctx is done.
func play(ctx context.Context, s *stream, cfg config) error {
	otoCtx, ready, err := oto.NewContext(int(cfg.sampleRate), 1, oto.FormatFloat32LE)
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil
	}

	player := otoCtx.NewPlayer(s)
	defer player.Close()

	player.Play()

	fmt.Fprintf(os.Stderr, "playing %d bands at %.0f Hz, %d-frame blocks (Ctrl+C to stop)\n",
		cfg.bands, cfg.sampleRate, cfg.frames)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			player.Pause()
			return nil
		case <-ticker.C:
			if err := player.Err(); err != nil {
				return fmt.Errorf("audio device: %w", err)
			}
		}
	}
}

// render pulls cfg.duration of audio without a device, or until ctx is done
// when no duration is set.
func render(ctx context.Context, s *stream, cfg config) error {
	total := int64(cfg.duration.Seconds() * cfg.sampleRate)
	buf := make([]byte, cfg.frames*bytesPerSample)

	for rendered := int64(0); total == 0 || rendered < total; rendered += int64(cfg.frames) {
		if total == 0 && ctx.Err() != nil {
			return nil
		}

		if _, err := io.ReadFull(s, buf); err != nil {
			return err
		}
	}

	return nil
}

func printReport(w io.Writer, r report, cfg config) {
	fmt.Fprintf(w, "rendered %.2f s (%d frames)\n", float64(r.frames)/cfg.sampleRate, r.frames)
	fmt.Fprintf(w, "peak level: %.1f dBFS\n", r.peakDBFS)

	if r.peakHz > 0 {
		fmt.Fprintf(w, "spectrum peak: %.0f Hz\n", r.peakHz)
	}

	if r.toneHz > 0 {
		fmt.Fprintf(w, "carrier fundamental (%.0f Hz): %.1f dBFS\n", r.toneHz, r.toneDBFS)
	}
}
