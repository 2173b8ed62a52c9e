package effects

import (
	"math"
	"testing"

	"github.com/mixforge/audiofx/internal/testutil"
)

func TestNewDelayValidation(t *testing.T) {
	if _, err := NewDelay(0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewDelay(48000, 0); err == nil {
		t.Fatal("expected error for zero channels")
	}
}

func TestDelaySetterValidation(t *testing.T) {
	d, _ := NewDelay(48000, 1)

	if err := d.SetTime(0); err == nil {
		t.Fatal("expected error for time below range")
	}
	if err := d.SetTime(5000); err == nil {
		t.Fatal("expected error for time above range")
	}
	if err := d.SetFeedback(0.99); err == nil {
		t.Fatal("expected error for feedback above range")
	}
	if err := d.SetDamping(-0.1); err == nil {
		t.Fatal("expected error for negative damping")
	}
	if err := d.SetTime(250); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelaySamplesDerivation(t *testing.T) {
	d, _ := NewDelay(48000, 1)

	// Default 350 ms at 48 kHz.
	if got := d.DelaySamples(); got != 16800 {
		t.Fatalf("DelaySamples() = %d, want 16800", got)
	}

	d.SetTime(100)

	in := [][]float64{make([]float64, 16)}
	out := testutil.ZeroBlock(1, 16)
	d.Process(in, out)

	// The new time takes effect at block start.
	if got := d.DelaySamples(); got != 4800 {
		t.Fatalf("DelaySamples() after SetTime(100) = %d, want 4800", got)
	}
}

func TestDelayFeedbackZeroIsExactTap(t *testing.T) {
	const (
		sampleRate = 48000.0
		length     = 10000
		tap        = 4800 // 100 ms
	)

	d, _ := NewDelay(sampleRate, 1)
	d.SetTime(100)
	d.SetFeedback(0)
	d.SetDamping(0.7) // must have no effect with zero feedback
	d.SetMix(0.5)

	in := [][]float64{testutil.Impulse(length, 0)}
	out := testutil.ZeroBlock(1, length)

	d.Process(in, out)

	for i := 0; i < length; i++ {
		want := 0.5 * in[0][i]
		if i >= tap {
			want += 0.5 * in[0][i-tap]
		}

		if out[0][i] != want {
			t.Fatalf("sample %d: got %v, want %v", i, out[0][i], want)
		}
	}
}

func TestDelayFeedbackProducesRepeats(t *testing.T) {
	const tap = 4800

	d, _ := NewDelay(48000, 1)
	d.SetTime(100)
	d.SetFeedback(0.5)
	d.SetDamping(0)
	d.SetMix(1)

	in := [][]float64{testutil.Impulse(3*tap + 10, 0)}
	out := testutil.ZeroBlock(1, 3*tap+10)

	d.Process(in, out)

	if math.Abs(out[0][tap]-1) > 1e-12 {
		t.Fatalf("first repeat = %v, want 1", out[0][tap])
	}
	if math.Abs(out[0][2*tap]-0.5) > 1e-12 {
		t.Fatalf("second repeat = %v, want 0.5", out[0][2*tap])
	}
	if math.Abs(out[0][3*tap]-0.25) > 1e-12 {
		t.Fatalf("third repeat = %v, want 0.25", out[0][3*tap])
	}
}

func TestDelayDampingDarkensRepeats(t *testing.T) {
	const tap = 480

	run := func(damping float64) float64 {
		d, _ := NewDelay(48000, 1)
		d.SetTime(10)
		d.SetFeedback(0.9)
		d.SetDamping(damping)
		d.SetMix(1)

		length := 10 * tap
		in := [][]float64{testutil.Sine(8000, 48000, 1.0, length)}
		out := testutil.ZeroBlock(1, length)
		d.Process(in, out)

		return testutil.PeakAbs(out[0][8*tap:])
	}

	if run(0.9) >= run(0) {
		t.Fatal("expected damping to attenuate high-frequency repeats")
	}
}

func TestDelayBypassAndReset(t *testing.T) {
	d, _ := NewDelay(48000, 2)
	d.SetBypass(true)

	left := testutil.Sine(440, 48000, 0.5, 256)
	right := testutil.Sine(660, 48000, 0.5, 256)
	in := testutil.Stereo(left, right)
	out := testutil.ZeroBlock(2, 256)

	d.Process(in, out)

	for ch := 0; ch < 2; ch++ {
		for i := range in[ch] {
			if out[ch][i] != in[ch][i] {
				t.Fatalf("ch %d sample %d: bypass altered signal", ch, i)
			}
		}
	}

	// After Reset a silent input yields only the dry path.
	d.SetBypass(false)
	d.Process(in, out)
	d.Reset()

	silence := testutil.ZeroBlock(2, 256)
	d.Process(silence, out)

	for ch := 0; ch < 2; ch++ {
		for i := range out[ch] {
			if out[ch][i] != 0 {
				t.Fatalf("ch %d sample %d: residue after Reset", ch, i)
			}
		}
	}
}
