package biquad

import (
	_ "github.com/cwbudde/algo-vocoder/dsp/filter/biquad/internal/arch/generic"  // register pure-Go kernels
	_ "github.com/cwbudde/algo-vocoder/dsp/filter/biquad/internal/arch/registry" // initialize backend registry
)
