package effects

import (
	"math"
	"testing"

	"github.com/mixforge/audiofx/internal/testutil"
)

func TestNewDistortionValidation(t *testing.T) {
	if _, err := NewDistortion(0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewDistortion(48000, 9); err == nil {
		t.Fatal("expected error for too many channels")
	}
}

func TestDistortionSetterValidation(t *testing.T) {
	d, _ := NewDistortion(48000, 1)

	if err := d.SetMode(DistortionMode(99)); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if err := d.SetDrive(1.5); err == nil {
		t.Fatal("expected error for drive above range")
	}
	if err := d.SetLevel(3); err == nil {
		t.Fatal("expected error for level above range")
	}
	if err := d.SetTone(math.NaN()); err == nil {
		t.Fatal("expected error for NaN tone")
	}
	if err := d.SetMode(DistortionDiode); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSoftClipLimitsAndSymmetry(t *testing.T) {
	for _, drive := range []float64{0, 0.5, 1} {
		for _, x := range []float64{0.1, 1, 10} {
			y := shapeSoftClip(x, drive)
			if y <= 0 || y > 1 {
				t.Fatalf("drive %v x %v: y = %v, want in (0, 1]", drive, x, y)
			}
			if shapeSoftClip(-x, drive) != -y {
				t.Fatalf("drive %v x %v: not odd", drive, x)
			}
		}
	}

	// Full drive saturates hard at unity.
	if y := shapeSoftClip(2, 1); math.Abs(y-1) > 1e-6 {
		t.Fatalf("shapeSoftClip(2, 1) = %v, want ~1", y)
	}
}

func TestHardClipThresholds(t *testing.T) {
	// Drive 0 is the identity inside the unit interval.
	if y := shapeHardClip(0.7, 0); y != 0.7 {
		t.Fatalf("shapeHardClip(0.7, 0) = %v, want 0.7", y)
	}
	if y := shapeHardClip(2, 0); y != 1 {
		t.Fatalf("shapeHardClip(2, 0) = %v, want 1", y)
	}

	// Drive 1 clamps at 0.1.
	if y := shapeHardClip(0.5, 1); math.Abs(y-0.1) > 1e-12 {
		t.Fatalf("shapeHardClip(0.5, 1) = %v, want 0.1", y)
	}
}

func TestTubeIsAsymmetric(t *testing.T) {
	pos := shapeTube(1, 0.5)
	neg := shapeTube(-1, 0.5)

	if pos <= 0 || pos >= 1 {
		t.Fatalf("positive half = %v, want in (0, 1)", pos)
	}
	if neg >= 0 || neg <= -1 {
		t.Fatalf("negative half = %v, want in (-1, 0)", neg)
	}
	if math.Abs(pos+neg) < 1e-6 {
		t.Fatal("expected asymmetric transfer, halves are mirror images")
	}
}

func TestQuadraticLinearRegionAndSaturation(t *testing.T) {
	// Inside the knee the curve is linear in the scaled input.
	if y := shapeQuadratic(0.1, 0); y != 0.1 {
		t.Fatalf("shapeQuadratic(0.1, 0) = %v, want 0.1", y)
	}

	// Far beyond the knee the output pins at unity.
	if y := shapeQuadratic(10, 1); y != 1 {
		t.Fatalf("shapeQuadratic(10, 1) = %v, want 1", y)
	}
	if y := shapeQuadratic(-10, 1); y != -1 {
		t.Fatalf("shapeQuadratic(-10, 1) = %v, want -1", y)
	}

	// The knee is continuous at its entry point.
	below := shapeQuadratic(0.49999, 0)
	above := shapeQuadratic(0.50001, 0)
	if math.Abs(below-above) > 1e-4 {
		t.Fatalf("knee discontinuity: %v vs %v", below, above)
	}
}

func TestFoldbackStaysWithinThreshold(t *testing.T) {
	for _, drive := range []float64{0, 0.25, 0.5, 1} {
		threshold := 1 - 0.8*drive
		for _, x := range []float64{-8, -1.2, -0.3, 0.3, 1.2, 8} {
			y := shapeFoldback(x, drive)
			if y > threshold+1e-12 || y < -threshold-1e-12 {
				t.Fatalf("drive %v x %v: y = %v exceeds threshold %v", drive, x, y, threshold)
			}
		}
	}

	// Small signals at zero drive pass unchanged.
	if y := shapeFoldback(0.5, 0); y != 0.5 {
		t.Fatalf("shapeFoldback(0.5, 0) = %v, want 0.5", y)
	}
}

func TestTubeClipBounded(t *testing.T) {
	for _, drive := range []float64{0, 0.5, 1} {
		for _, x := range []float64{-10, -1, -0.2, 0.2, 1, 10} {
			y := shapeTubeClip(x, drive)
			if math.Abs(y) > 1 {
				t.Fatalf("drive %v x %v: y = %v, want |y| <= 1", drive, x, y)
			}
		}
	}
}

func TestDiodeAsymmetricLimits(t *testing.T) {
	// Both halves approach +/-1 but along different curves.
	pos := shapeDiode(100, 0.5)
	neg := shapeDiode(-100, 0.5)

	if math.Abs(pos-1) > 0.01 {
		t.Fatalf("positive limit = %v, want ~1", pos)
	}
	if math.Abs(neg+1) > 0.01 {
		t.Fatalf("negative limit = %v, want ~-1", neg)
	}

	if math.Abs(shapeDiode(1, 0.5)+shapeDiode(-1, 0.5)) < 1e-6 {
		t.Fatal("expected asymmetric transfer at unit input")
	}
}

func TestAllModesProduceFiniteOutput(t *testing.T) {
	const sampleRate = 48000.0

	in := [][]float64{testutil.Sine(220, sampleRate, 1.5, 2048)}

	for mode := DistortionMode(0); mode < numDistortionModes; mode++ {
		for _, drive := range []float64{0, 1} {
			d, _ := NewDistortion(sampleRate, 1)
			d.SetMode(mode)
			d.SetDrive(drive)

			out := testutil.ZeroBlock(1, 2048)
			if !d.Process(in, out) {
				t.Fatalf("mode %d drive %v: Process failed", mode, drive)
			}

			testutil.RequireFinite(t, out[0])
		}
	}
}

func TestDistortionLevelScalesOutput(t *testing.T) {
	in := [][]float64{testutil.DC(0.5, 256)}

	quiet, _ := NewDistortion(48000, 1)
	quiet.SetMode(DistortionHardClip)
	quiet.SetDrive(0)
	quiet.SetTone(0)
	quiet.SetLevel(1)

	loud, _ := NewDistortion(48000, 1)
	loud.SetMode(DistortionHardClip)
	loud.SetDrive(0)
	loud.SetTone(0)
	loud.SetLevel(2)

	outQuiet := testutil.ZeroBlock(1, 256)
	outLoud := testutil.ZeroBlock(1, 256)

	quiet.Process(in, outQuiet)
	loud.Process(in, outLoud)

	for i := range outQuiet[0] {
		if math.Abs(outLoud[0][i]-2*outQuiet[0][i]) > 1e-12 {
			t.Fatalf("sample %d: level 2 is not twice level 1", i)
		}
	}
}

func TestDistortionBypassAndDryMix(t *testing.T) {
	in := [][]float64{testutil.Sine(440, 48000, 1.2, 512)}

	d, _ := NewDistortion(48000, 1)
	d.SetDrive(1)
	d.SetBypass(true)

	out := testutil.ZeroBlock(1, 512)
	d.Process(in, out)

	for i := range in[0] {
		if out[0][i] != in[0][i] {
			t.Fatalf("sample %d: bypass altered signal", i)
		}
	}

	d.SetBypass(false)
	d.SetMix(0)
	d.Reset()

	d.Process(in, out)
	for i := range in[0] {
		if out[0][i] != in[0][i] {
			t.Fatalf("sample %d: mix=0 altered signal", i)
		}
	}
}

func TestDistortionToneDarkensOutput(t *testing.T) {
	const sampleRate = 48000.0

	in := [][]float64{testutil.Sine(8000, sampleRate, 1.0, 4096)}

	bright, _ := NewDistortion(sampleRate, 1)
	bright.SetMode(DistortionSoftClip)
	bright.SetTone(0)

	dark, _ := NewDistortion(sampleRate, 1)
	dark.SetMode(DistortionSoftClip)
	dark.SetTone(1)

	outBright := testutil.ZeroBlock(1, 4096)
	outDark := testutil.ZeroBlock(1, 4096)

	bright.Process(in, outBright)
	dark.Process(in, outDark)

	if testutil.PeakAbs(outDark[0][2048:]) >= testutil.PeakAbs(outBright[0][2048:]) {
		t.Fatal("expected full tone to attenuate a high-frequency signal")
	}
}
