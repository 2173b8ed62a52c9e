package effectchain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mixforge/audiofx/dsp/effects"
)

// ErrUnknownEffect is returned when a stage references an unregistered
// effect type.
var ErrUnknownEffect = errors.New("unknown effect type")

var errDuplicateEffect = errors.New("duplicate effect type")

// Factory builds one effect unit for the given stream format.
type Factory func(sampleRate float64, channels int) (effects.Processor, error)

// Registry maps effect type names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory for the given effect type.
func (r *Registry) Register(effectType string, factory Factory) error {
	if effectType == "" {
		return errors.New("empty effect type")
	}

	if factory == nil {
		return errors.New("nil factory")
	}

	if _, exists := r.factories[effectType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateEffect, effectType)
	}

	r.factories[effectType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(effectType string, factory Factory) {
	err := r.Register(effectType, factory)
	if err != nil {
		panic("effectchain registry: " + err.Error())
	}
}

// Lookup returns the factory for the given effect type, or nil.
func (r *Registry) Lookup(effectType string) Factory {
	return r.factories[effectType]
}

// Types returns the registered effect type names in sorted order.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// DefaultRegistry returns a registry with every built-in effect type.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("eq", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewParametricEQ(sampleRate, channels)
	})
	r.MustRegister("distortion", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewDistortion(sampleRate, channels)
	})
	r.MustRegister("delay", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewDelay(sampleRate, channels)
	})
	r.MustRegister("chorus", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewChorus(sampleRate, channels)
	})
	r.MustRegister("compressor", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewCompressor(sampleRate, channels)
	})
	r.MustRegister("reverb", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewReverb(sampleRate, channels)
	})
	r.MustRegister("bass_purr", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewBassPurr(sampleRate, channels)
	})
	r.MustRegister("growling_bass", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewGrowlingBass(sampleRate, channels)
	})
	r.MustRegister("meter", func(sampleRate float64, channels int) (effects.Processor, error) {
		return effects.NewMeter(sampleRate, channels)
	})

	return r
}
