package biquad

import (
	"math"
	"testing"
)

func TestIdentityPassesThrough(t *testing.T) {
	s := NewSection(Identity())

	for _, x := range []float64{0, 1, -0.5, 0.25, 1e-6} {
		if got := s.ProcessSample(x); got != x {
			t.Fatalf("identity ProcessSample(%v) = %v", x, got)
		}
	}
}

func TestProcessSampleImpulseResponse(t *testing.T) {
	// y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] for a FIR coefficient set.
	s := NewSection(Coefficients{B0: 0.5, B1: 0.25, B2: 0.125})

	want := []float64{0.5, 0.25, 0.125, 0, 0}
	for i, w := range want {
		x := 0.0
		if i == 0 {
			x = 1
		}

		got := s.ProcessSample(x)
		if math.Abs(got-w) > 1e-15 {
			t.Fatalf("impulse sample %d = %v, want %v", i, got, w)
		}
	}
}

func TestFeedbackPole(t *testing.T) {
	// Single pole at 0.5: impulse response 1, 0.5, 0.25, ...
	s := NewSection(Coefficients{B0: 1, A1: -0.5})

	x := 1.0
	want := 1.0

	for i := 0; i < 10; i++ {
		got := s.ProcessSample(x)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("sample %d = %v, want %v", i, got, want)
		}

		x = 0
		want *= 0.5
	}
}

func TestProcessBlockMatchesProcessSample(t *testing.T) {
	coeffs := Coefficients{B0: 0.3, B1: 0.2, B2: 0.1, A1: -0.4, A2: 0.2}

	a := NewSection(coeffs)
	b := NewSection(coeffs)

	input := make([]float64, 129) // odd length exercises the unrolled tail
	for i := range input {
		input[i] = math.Sin(0.1 * float64(i))
	}

	block := append([]float64(nil), input...)
	a.ProcessBlock(block)

	for i, x := range input {
		want := b.ProcessSample(x)
		if math.Abs(block[i]-want) > 1e-12 {
			t.Fatalf("sample %d: block %v != sample %v", i, block[i], want)
		}
	}
}

func TestProcessBlockToMatchesInPlace(t *testing.T) {
	coeffs := Coefficients{B0: 0.7, B1: -0.3, A1: 0.1}

	a := NewSection(coeffs)
	b := NewSection(coeffs)

	src := make([]float64, 64)
	for i := range src {
		src[i] = math.Cos(0.05 * float64(i))
	}

	dst := make([]float64, len(src))
	a.ProcessBlockTo(dst, src)

	inPlace := append([]float64(nil), src...)
	b.ProcessBlock(inPlace)

	for i := range dst {
		if dst[i] != inPlace[i] {
			t.Fatalf("sample %d: ProcessBlockTo %v != ProcessBlock %v", i, dst[i], inPlace[i])
		}
	}
}

func TestStateSaveRestore(t *testing.T) {
	coeffs := Coefficients{B0: 0.5, B1: 0.1, B2: 0.05, A1: -0.6, A2: 0.3}
	s := NewSection(coeffs)

	for i := 0; i < 16; i++ {
		s.ProcessSample(math.Sin(float64(i)))
	}

	saved := s.State()
	a := s.ProcessSample(0.5)

	s.SetState(saved)
	b := s.ProcessSample(0.5)

	if a != b {
		t.Fatalf("restored state produced %v, want %v", b, a)
	}
}

func TestResetClearsState(t *testing.T) {
	s := NewSection(Coefficients{B0: 1, A1: -0.9})

	s.ProcessSample(1)
	s.Reset()

	if got := s.ProcessSample(0); got != 0 {
		t.Fatalf("after Reset, silence in produced %v", got)
	}
}
