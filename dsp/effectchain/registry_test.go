package effectchain

import (
	"testing"

	"github.com/mixforge/audiofx/dsp/effects"
)

func nopFactory(sampleRate float64, channels int) (effects.Processor, error) {
	return effects.NewParametricEQ(sampleRate, channels)
}

func TestRegistryRegisterValidation(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("", nopFactory); err == nil {
		t.Fatal("expected error for empty effect type")
	}
	if err := r.Register("eq", nil); err == nil {
		t.Fatal("expected error for nil factory")
	}
	if err := r.Register("eq", nopFactory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register("eq", nopFactory); err == nil {
		t.Fatal("expected error for duplicate effect type")
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("eq", nopFactory)

	if r.Lookup("eq") == nil {
		t.Fatal("Lookup(eq) = nil")
	}
	if r.Lookup("missing") != nil {
		t.Fatal("Lookup(missing) != nil")
	}
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	NewRegistry().MustRegister("", nopFactory)
}

func TestDefaultRegistryBuildsEveryType(t *testing.T) {
	r := DefaultRegistry()

	want := []string{
		"bass_purr", "chorus", "compressor", "delay", "distortion",
		"eq", "growling_bass", "meter", "reverb",
	}

	got := r.Types()
	if len(got) != len(want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}

	for i, typ := range want {
		if got[i] != typ {
			t.Fatalf("Types()[%d] = %s, want %s", i, got[i], typ)
		}

		proc, err := r.Lookup(typ)(48000, 2)
		if err != nil {
			t.Fatalf("factory %s failed: %v", typ, err)
		}
		if proc == nil {
			t.Fatalf("factory %s returned nil processor", typ)
		}
	}
}
