// Package effectchain runs an ordered series of effect units over planar
// audio blocks. Stages are created through a Registry so hosts can describe
// a chain by effect type names alone.
package effectchain

import (
	"errors"
	"fmt"

	"github.com/mixforge/audiofx/dsp/effects"
)

var errDuplicateStage = errors.New("duplicate stage id")

type stage struct {
	id         string
	effectType string
	proc       effects.Processor
}

// Chain owns an ordered list of effect stages and the intermediate buffers
// used to run them back to back. It is independent of any host engine.
type Chain struct {
	sampleRate float64
	channels   int
	registry   *Registry

	stages []stage

	// Ping-pong buffers between stages, grown to the largest block seen.
	scratch [2][][]float64
}

// New creates an empty chain for the given stream format. A nil registry
// falls back to DefaultRegistry.
func New(sampleRate float64, channels int, registry *Registry) (*Chain, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("effect chain sample rate must be positive: %f", sampleRate)
	}

	if channels < 1 {
		return nil, fmt.Errorf("effect chain channels must be positive: %d", channels)
	}

	if registry == nil {
		registry = DefaultRegistry()
	}

	c := &Chain{
		sampleRate: sampleRate,
		channels:   channels,
		registry:   registry,
	}

	for i := range c.scratch {
		c.scratch[i] = make([][]float64, channels)
	}

	return c, nil
}

// Append creates a stage of the given effect type at the end of the chain
// and returns its processor for parameter access.
func (c *Chain) Append(id, effectType string) (effects.Processor, error) {
	if c.Stage(id) != nil {
		return nil, fmt.Errorf("%w: %s", errDuplicateStage, id)
	}

	factory := c.registry.Lookup(effectType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, effectType)
	}

	proc, err := factory(c.sampleRate, c.channels)
	if err != nil {
		return nil, fmt.Errorf("effect chain stage %s: %w", id, err)
	}

	c.stages = append(c.stages, stage{id: id, effectType: effectType, proc: proc})

	return proc, nil
}

// Remove deletes the stage with the given id, reporting whether it existed.
func (c *Chain) Remove(id string) bool {
	for i := range c.stages {
		if c.stages[i].id == id {
			c.stages = append(c.stages[:i], c.stages[i+1:]...)
			return true
		}
	}

	return false
}

// Stage returns the processor for the given stage id, or nil.
func (c *Chain) Stage(id string) effects.Processor {
	for i := range c.stages {
		if c.stages[i].id == id {
			return c.stages[i].proc
		}
	}

	return nil
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.stages) }

// Reset clears the state of every stage.
func (c *Chain) Reset() {
	for i := range c.stages {
		c.stages[i].proc.Reset()
	}
}

// Process runs the block through every stage in order. An empty chain copies
// the input through unchanged. Returns false when any stage rejects the
// block, leaving out undefined.
func (c *Chain) Process(in, out [][]float64) bool {
	if len(in) < c.channels || len(out) < c.channels {
		return false
	}

	if len(c.stages) == 0 {
		n := len(out[0])

		for ch := 0; ch < c.channels; ch++ {
			if len(in[ch]) < n {
				n = len(in[ch])
			}
			if len(out[ch]) < n {
				n = len(out[ch])
			}
		}

		for ch := 0; ch < c.channels; ch++ {
			copy(out[ch][:n], in[ch][:n])
		}

		return true
	}

	if len(c.stages) == 1 {
		return c.stages[0].proc.Process(in, out)
	}

	n := len(in[0])
	for ch := 1; ch < c.channels; ch++ {
		if len(in[ch]) < n {
			n = len(in[ch])
		}
	}

	c.ensureScratch(n)

	src := in
	for i := range c.stages {
		dst := out
		if i < len(c.stages)-1 {
			dst = c.scratch[i%2]
		}

		if !c.stages[i].proc.Process(src, dst) {
			return false
		}

		src = dst
	}

	return true
}

// ensureScratch sizes every scratch channel to exactly n samples so stages
// never infer a stale block length from leftover buffer capacity.
func (c *Chain) ensureScratch(n int) {
	for i := range c.scratch {
		for ch := 0; ch < c.channels; ch++ {
			if cap(c.scratch[i][ch]) < n {
				c.scratch[i][ch] = make([]float64, n)
			} else {
				c.scratch[i][ch] = c.scratch[i][ch][:n]
			}
		}
	}
}
