package bank_test

import (
	"fmt"

	"github.com/cwbudde/algo-vocoder/dsp/filter/bank"
)

func ExamplePartition() {
	bands, err := bank.Partition(4, 250, 4000)
	if err != nil {
		panic(err)
	}

	for _, b := range bands {
		fmt.Printf("%4.0f - %4.0f Hz  fc=%6.1f  q=%.2f\n", b.Low, b.High, b.Center, b.Q)
	}

	// Output:
	//  250 -  500 Hz  fc= 375.0  q=1.50
	//  500 - 1000 Hz  fc= 750.0  q=1.50
	// 1000 - 2000 Hz  fc=1500.0  q=1.50
	// 2000 - 4000 Hz  fc=3000.0  q=1.50
}

func ExampleNew() {
	b, err := bank.New(44100, bank.WithBands(30), bank.WithFrequencyRange(200, 5000))
	if err != nil {
		panic(err)
	}

	bands := b.Bands()
	fmt.Printf("%d bands, first fc=%.1f Hz, last fc=%.1f Hz\n",
		b.NumBands(), bands[0].Center, bands[len(bands)-1].Center)

	// Output:
	// 30 bands, first fc=211.3 Hz, last fc=4745.6 Hz
}
