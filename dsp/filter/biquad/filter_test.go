package biquad

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-vocoder/internal/testutil"
)

// tolerance for floating-point comparisons.
const eps = 1e-12

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func stateClose(a, b State) bool {
	return almostEqual(a.X1, b.X1, eps) && almostEqual(a.X2, b.X2, eps) &&
		almostEqual(a.Y1, b.Y1, eps) && almostEqual(a.Y2, b.Y2, eps)
}

func mustBandpass(t testing.TB, sampleRate, fc, q float64) *Filter {
	t.Helper()
	f, err := NewBandpass(sampleRate, fc, q)
	if err != nil {
		t.Fatalf("NewBandpass(%g, %g, %g) error = %v", sampleRate, fc, q, err)
	}
	return f
}

func TestNewFilterIdentity(t *testing.T) {
	f, err := NewFilter(44100)
	if err != nil {
		t.Fatalf("NewFilter() error = %v", err)
	}
	if f.Coefficients() != Identity() {
		t.Fatalf("coefficients = %+v, want identity", f.Coefficients())
	}
	if f.State() != (State{}) {
		t.Fatalf("initial state not zero: %+v", f.State())
	}
	if f.SampleRate() != 44100 {
		t.Fatalf("SampleRate() = %v, want 44100", f.SampleRate())
	}

	in := []float64{1, 0, -1, 0.5, 0.25}
	out := make([]float64, len(in))
	if err := f.Process(out, in); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out, in, 0)
}

func TestNewFilterInvalidSampleRate(t *testing.T) {
	for _, sr := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewFilter(sr); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("NewFilter(%v) error = %v, want ErrInvalidSampleRate", sr, err)
		}
	}
}

func TestBandpassCoefficientsFormula(t *testing.T) {
	const (
		sr = 44100.0
		fc = 1000.0
		q  = 5.0
	)
	c, err := BandpassCoefficients(fc, q, sr)
	if err != nil {
		t.Fatalf("BandpassCoefficients() error = %v", err)
	}

	w0 := math.Tan(math.Pi * fc / sr)
	norm := 1 / (1 + w0/q + w0*w0)
	want := Coefficients{
		B0: w0 / q * norm,
		B1: 0,
		B2: -w0 / q * norm,
		A1: 2 * (w0*w0 - 1) * norm,
		A2: (1 - w0/q + w0*w0) * norm,
	}

	if !almostEqual(c.B0, want.B0, eps) || c.B1 != 0 || !almostEqual(c.B2, want.B2, eps) ||
		!almostEqual(c.A1, want.A1, eps) || !almostEqual(c.A2, want.A2, eps) {
		t.Fatalf("coefficients = %+v, want %+v", c, want)
	}
	if c.B2 != -c.B0 {
		t.Fatalf("B2 = %v, want -B0 = %v", c.B2, -c.B0)
	}
}

func TestBandpassCoefficientsValidation(t *testing.T) {
	tests := []struct {
		name    string
		fc, q   float64
		sr      float64
		wantErr error
	}{
		{"zero frequency", 0, 1, 44100, ErrInvalidFrequency},
		{"negative frequency", -100, 1, 44100, ErrInvalidFrequency},
		{"at nyquist", 22050, 1, 44100, ErrInvalidFrequency},
		{"above nyquist", 30000, 1, 44100, ErrInvalidFrequency},
		{"NaN frequency", math.NaN(), 1, 44100, ErrInvalidFrequency},
		{"zero Q", 1000, 0, 44100, ErrInvalidQ},
		{"negative Q", 1000, -2, 44100, ErrInvalidQ},
		{"Inf Q", 1000, math.Inf(1), 44100, ErrInvalidQ},
		{"zero sample rate", 1000, 1, 0, ErrInvalidSampleRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BandpassCoefficients(tc.fc, tc.q, tc.sr)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSetBandpassLeavesFilterUnchangedOnError(t *testing.T) {
	f := mustBandpass(t, 44100, 1000, 4)
	before := f.Coefficients()

	if err := f.SetBandpass(25000, 4); err == nil {
		t.Fatal("expected error for center above Nyquist")
	}
	if f.Coefficients() != before {
		t.Fatalf("coefficients changed after failed SetBandpass: %+v", f.Coefficients())
	}
}

func TestBandpassShape(t *testing.T) {
	const sr = 44100.0

	for _, fc := range []float64{50, 200, 1000, 5000, 15000, 21000} {
		for _, q := range []float64{0.5, 1, 4.3, 18.7} {
			c, err := BandpassCoefficients(fc, q, sr)
			if err != nil {
				t.Fatalf("fc=%g q=%g: %v", fc, q, err)
			}

			center := cmplx.Abs(c.Response(fc, sr))
			dc := cmplx.Abs(c.ResponseZ(1))
			nyq := cmplx.Abs(c.ResponseZ(-1))

			if !(dc < center) || !(nyq < center) {
				t.Errorf("fc=%g q=%g: |H(1)|=%g |H(-1)|=%g, |H(fc)|=%g", fc, q, dc, nyq, center)
			}
			if !almostEqual(center, 1, 1e-9) {
				t.Errorf("fc=%g q=%g: center gain %g, want 1", fc, q, center)
			}
		}
	}
}

func TestMagnitudeSquaredMatchesResponse(t *testing.T) {
	const sr = 44100.0
	c, err := BandpassCoefficients(800, 3, sr)
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []float64{20, 400, 800, 1600, 10000} {
		h := cmplx.Abs(c.Response(f, sr))
		if !almostEqual(c.MagnitudeSquared(f, sr), h*h, 1e-10) {
			t.Errorf("f=%g: MagnitudeSquared=%g, |H|^2=%g", f, c.MagnitudeSquared(f, sr), h*h)
		}
	}

	if db := c.MagnitudeDB(800, sr); !almostEqual(db, 0, 1e-8) {
		t.Errorf("MagnitudeDB at center = %g, want 0", db)
	}
}

func TestProcessHandTraced(t *testing.T) {
	// B0=0.25, B1=0.5, B2=0.25, A1=-0.2, A2=0.04 with x = [1, 0, 0, 0]:
	//
	// y0 = 0.25
	// y1 = 0.5 + 0.2*0.25                 = 0.55
	// y2 = 0.25 + 0.2*0.55 - 0.04*0.25    = 0.35
	// y3 = 0.2*0.35 - 0.04*0.55           = 0.048
	f, err := NewFilter(48000)
	if err != nil {
		t.Fatal(err)
	}
	f.coeffs = Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}

	out := make([]float64, 4)
	if err := f.Process(out, testutil.Impulse(4, 0)); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, out, []float64{0.25, 0.55, 0.35, 0.048}, eps)

	want := State{X1: 0, X2: 0, Y1: 0.048, Y2: 0.35}
	if !stateClose(f.State(), want) {
		t.Fatalf("state = %+v, want %+v", f.State(), want)
	}
}

func TestProcessMatchesProcessSample(t *testing.T) {
	a := mustBandpass(t, 44100, 700, 6)
	b := mustBandpass(t, 44100, 700, 6)

	in := testutil.DeterministicNoise(3, 1, 513)
	ref := make([]float64, len(in))
	for i, x := range in {
		ref[i] = a.ProcessSample(x)
	}

	out := make([]float64, len(in))
	if err := b.Process(out, in); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out, ref, eps)

	if !stateClose(a.State(), b.State()) {
		t.Fatalf("state mismatch: sample=%+v block=%+v", a.State(), b.State())
	}
}

func TestProcessSplitBlocksMatchesSingleBlock(t *testing.T) {
	const n = 64
	in := testutil.DeterministicNoise(11, 1, n)

	whole := mustBandpass(t, 44100, 1200, 9)
	want := make([]float64, n)
	if err := whole.Process(want, in); err != nil {
		t.Fatal(err)
	}

	for split := 2; split <= n-2; split++ {
		f := mustBandpass(t, 44100, 1200, 9)
		got := make([]float64, n)
		if err := f.Process(got[:split], in[:split]); err != nil {
			t.Fatalf("split %d first: %v", split, err)
		}
		if err := f.Process(got[split:], in[split:]); err != nil {
			t.Fatalf("split %d second: %v", split, err)
		}
		for i := range got {
			if !almostEqual(got[i], want[i], eps) {
				t.Fatalf("split %d sample %d: got %v, want %v", split, i, got[i], want[i])
			}
		}
		if !stateClose(f.State(), whole.State()) {
			t.Fatalf("split %d state = %+v, want %+v", split, f.State(), whole.State())
		}
	}
}

func TestProcessInPlace(t *testing.T) {
	in := testutil.DeterministicSine(440, 44100, 0.8, 256)

	ref := mustBandpass(t, 44100, 440, 4)
	want := make([]float64, len(in))
	if err := ref.Process(want, in); err != nil {
		t.Fatal(err)
	}

	f := mustBandpass(t, 44100, 440, 4)
	buf := append([]float64(nil), in...)
	if err := f.Process(buf, buf); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, buf, want, eps)
}

func TestProcessZeroInputDecays(t *testing.T) {
	f := mustBandpass(t, 44100, 1000, 4)

	noise := testutil.DeterministicNoise(5, 1, 256)
	buf := make([]float64, 256)
	if err := f.Process(buf, noise); err != nil {
		t.Fatal(err)
	}
	if testutil.MaxAbs(buf) == 0 {
		t.Fatal("expected non-zero response to noise")
	}

	zeros := make([]float64, 256)
	for range 100 {
		if err := f.Process(buf, zeros); err != nil {
			t.Fatal(err)
		}
	}
	if peak := testutil.MaxAbs(buf); peak > 1e-12 {
		t.Fatalf("output after zero input = %g, want < 1e-12", peak)
	}

	// From the zero state, zero input stays exactly zero.
	f.Reset()
	for range 4 {
		if err := f.Process(buf, zeros); err != nil {
			t.Fatal(err)
		}
		testutil.RequireAllZero(t, buf)
	}
}

func TestProcessRejectsInvalidBlocks(t *testing.T) {
	f := mustBandpass(t, 44100, 1000, 4)
	if err := f.Process(make([]float64, 8), testutil.Ones(8)); err != nil {
		t.Fatal(err)
	}
	saved := f.State()

	tests := []struct {
		name     string
		dst, src []float64
		wantErr  error
	}{
		{"empty", nil, nil, ErrBlockTooShort},
		{"single sample", make([]float64, 1), []float64{1}, ErrBlockTooShort},
		{"short dst", make([]float64, 3), testutil.Ones(4), ErrLengthMismatch},
		{"long dst", make([]float64, 5), testutil.Ones(4), ErrLengthMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := f.Process(tc.dst, tc.src)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if f.State() != saved {
				t.Fatalf("state changed on rejected input: %+v", f.State())
			}
		})
	}
}

func TestStateRoundTrip(t *testing.T) {
	f := mustBandpass(t, 44100, 300, 2)
	if err := f.Process(make([]float64, 16), testutil.DeterministicNoise(1, 1, 16)); err != nil {
		t.Fatal(err)
	}
	s := f.State()
	f.Reset()
	if f.State() != (State{}) {
		t.Fatal("Reset did not clear state")
	}
	f.SetState(s)
	if f.State() != s {
		t.Fatalf("SetState/State mismatch: %+v vs %+v", f.State(), s)
	}
}

func TestProcessAllocations(t *testing.T) {
	f := mustBandpass(t, 44100, 1000, 4)
	in := testutil.DeterministicNoise(2, 1, 256)
	out := make([]float64, 256)

	allocs := testing.AllocsPerRun(100, func() {
		_ = f.Process(out, in)
	})
	if allocs != 0 {
		t.Fatalf("Process allocated %v times per run, want 0", allocs)
	}
}

func BenchmarkProcess256(b *testing.B) {
	f := mustBandpass(b, 44100, 1000, 4)
	in := testutil.DeterministicNoise(2, 1, 256)
	out := make([]float64, 256)

	b.ReportAllocs()
	b.SetBytes(int64(len(in) * 8))
	b.ResetTimer()

	for range b.N {
		_ = f.Process(out, in)
	}
}
