package effects

import (
	"math"
	"testing"

	"github.com/mixforge/audiofx/internal/testutil"
)

func TestNewReverbValidation(t *testing.T) {
	if _, err := NewReverb(0, 2); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewReverb(48000, 0); err == nil {
		t.Fatal("expected error for zero channels")
	}
	if _, err := NewReverb(48000, 3); err == nil {
		t.Fatal("expected error for more than two channels")
	}
}

func TestReverbSetterValidation(t *testing.T) {
	r, _ := NewReverb(48000, 2)

	if err := r.SetRoomSize(1.5); err == nil {
		t.Fatal("expected error for room size above range")
	}
	if err := r.SetDecay(0); err == nil {
		t.Fatal("expected error for decay below range")
	}
	if err := r.SetPredelay(200); err == nil {
		t.Fatal("expected error for predelay above range")
	}
	if err := r.SetWidth(-0.1); err == nil {
		t.Fatal("expected error for negative width")
	}
	if err := r.SetDamping(0.4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReverbMixZeroIsExactDry(t *testing.T) {
	r, _ := NewReverb(44100, 2)
	r.SetRoomSize(1)
	r.SetDecay(10)
	r.SetMix(0)

	left := testutil.Sine(440, 44100, 0.9, 2048)
	right := testutil.Sine(550, 44100, 0.9, 2048)
	in := testutil.Stereo(left, right)
	out := testutil.ZeroBlock(2, 2048)

	// Several blocks so internal comb state is nonzero.
	for i := 0; i < 8; i++ {
		r.Process(in, out)
	}

	for ch := 0; ch < 2; ch++ {
		for i := range in[ch] {
			if out[ch][i] != in[ch][i] {
				t.Fatalf("ch %d sample %d: mix=0 altered signal", ch, i)
			}
		}
	}
}

func TestReverbImpulseProducesTail(t *testing.T) {
	const length = 44100

	r, _ := NewReverb(44100, 1)
	r.SetMix(1)

	in := [][]float64{testutil.Impulse(length, 0)}
	out := testutil.ZeroBlock(1, length)

	r.Process(in, out)

	testutil.RequireFinite(t, out[0])

	// Energy must persist well after the direct sound.
	if testutil.PeakAbs(out[0][22050:]) == 0 {
		t.Fatal("no reverb tail after 500 ms")
	}
}

func TestReverbTailDecays(t *testing.T) {
	const (
		sampleRate = 44100.0
		seconds    = 4
		length     = int(sampleRate) * seconds
	)

	r, _ := NewReverb(sampleRate, 1)
	r.SetDecay(1)
	r.SetMix(1)

	in := [][]float64{testutil.Impulse(length, 0)}
	out := testutil.ZeroBlock(1, length)

	r.Process(in, out)

	early := testutil.PeakAbs(out[0][:length/4])
	late := testutil.PeakAbs(out[0][3*length/4:])

	if late >= early {
		t.Fatalf("tail did not decay: early %v, late %v", early, late)
	}
	if late > early*0.1 {
		t.Fatalf("tail decays too slowly: early %v, late %v", early, late)
	}
}

func TestReverbStereoChannelsDecorrelated(t *testing.T) {
	const length = 22050

	r, _ := NewReverb(44100, 2)
	r.SetMix(1)
	r.SetWidth(1)

	impulse := testutil.Impulse(length, 0)
	in := testutil.Stereo(impulse, impulse)
	out := testutil.ZeroBlock(2, length)

	r.Process(in, out)

	// Identical input must still produce different tails per channel.
	var diff float64
	for i := 2000; i < length; i++ {
		diff += math.Abs(out[0][i] - out[1][i])
	}

	if diff == 0 {
		t.Fatal("stereo tails are identical")
	}
}

func TestReverbPredelayShiftsTail(t *testing.T) {
	const length = 8192

	r, _ := NewReverb(44100, 1)
	r.SetMix(1)
	r.SetPredelay(50)

	in := [][]float64{testutil.Impulse(length, 0)}
	out := testutil.ZeroBlock(1, length)

	r.Process(in, out)

	// 50 ms of predelay plus the shortest comb keeps the first kilosamples
	// silent.
	if testutil.PeakAbs(out[0][:1000]) != 0 {
		t.Fatal("expected silence before the predelayed tail")
	}
	if testutil.PeakAbs(out[0]) == 0 {
		t.Fatal("no output at all")
	}
}

func TestReverbResetSilences(t *testing.T) {
	r, _ := NewReverb(44100, 1)
	r.SetMix(1)

	in := [][]float64{testutil.DC(0.5, 1024)}
	out := testutil.ZeroBlock(1, 1024)

	for i := 0; i < 4; i++ {
		r.Process(in, out)
	}

	r.Reset()

	silence := [][]float64{make([]float64, 1024)}
	r.Process(silence, out)

	for i := range out[0] {
		if out[0][i] != 0 {
			t.Fatalf("sample %d: residue after Reset", i)
		}
	}
}
