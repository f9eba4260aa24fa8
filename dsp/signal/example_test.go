package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-vocoder/dsp/core"
	"github.com/cwbudde/algo-vocoder/dsp/signal"
)

func ExampleOscillator() {
	w, err := signal.ParseWaveform("saw")
	if err != nil {
		panic(err)
	}

	o, err := signal.NewOscillator(w, 1000, core.WithSampleRate(8000))
	if err != nil {
		panic(err)
	}

	buf := make([]float64, 4)
	o.Fill(buf)
	fmt.Println(w, buf)

	// Output:
	// sawtooth [-0.75 -0.5 -0.25 0]
}
