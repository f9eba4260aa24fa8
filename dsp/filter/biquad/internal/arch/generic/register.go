// Package generic registers the pure-Go biquad block kernels.
package generic

import (
	"github.com/cwbudde/algo-vecmath/cpu"
	"github.com/cwbudde/algo-vocoder/dsp/filter/biquad/internal/arch/registry"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "reference",
		SIMDLevel:    cpu.SIMDNone,
		Priority:     0,
		ProcessBlock: ProcessBlock,
	})
	registry.Global.Register(registry.OpEntry{
		Name:         "unrolled2",
		SIMDLevel:    cpu.SIMDNone,
		Priority:     10,
		ProcessBlock: ProcessBlockUnrolled2,
	})
}

// ProcessBlock is the one-sample-per-iteration direct-form I recurrence.
func ProcessBlock(c registry.Coefficients, s registry.State, dst, src []float64) registry.State {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2 := s.X1, s.X2
	y1, y2 := s.Y1, s.Y2

	_ = dst[len(src)-1] // bounds check hint

	for i, x := range src {
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		dst[i] = y
	}

	return registry.State{X1: x1, X2: x2, Y1: y1, Y2: y2}
}

// ProcessBlockUnrolled2 is ProcessBlock unrolled by two.
func ProcessBlockUnrolled2(c registry.Coefficients, s registry.State, dst, src []float64) registry.State {
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2
	x1, x2 := s.X1, s.X2
	y1, y2 := s.Y1, s.Y2

	n := len(src)
	_ = dst[n-1]

	i := 0
	for ; i+1 < n; i += 2 {
		xa := src[i]
		xb := src[i+1]

		ya := b0*xa + b1*x1 + b2*x2 - a1*y1 - a2*y2
		yb := b0*xb + b1*xa + b2*x1 - a1*ya - a2*y1

		dst[i] = ya
		dst[i+1] = yb

		x2, x1 = xa, xb
		y2, y1 = ya, yb
	}

	if i < n {
		x := src[i]
		y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
		x2, x1 = x1, x
		y2, y1 = y1, y
		dst[i] = y
	}

	return registry.State{X1: x1, X2: x2, Y1: y1, Y2: y2}
}
