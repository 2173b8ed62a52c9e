package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/core"
	"github.com/mixforge/audiofx/dsp/delay"
)

const (
	defaultDelayTimeMs   = 350.0
	defaultDelayFeedback = 0.35
	defaultDelayDamping  = 0.3
	defaultDelayMix      = 0.3

	minDelayTimeMs   = 1.0
	maxDelayTimeMs   = 2000.0
	maxDelayFeedback = 0.95
)

// Delay is a single feedback delay with a damped feedback path. The delay
// buffer holds two seconds of audio per channel and is allocated once.
type Delay struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	timeMs   float64
	feedback float64
	damping  float64

	// delaySamples is derived from timeMs once per block; a change causes
	// an instantaneous read-pointer jump (accepted discontinuity).
	delaySamples int
	cachedTimeMs float64

	lines     []*delay.Line
	dampState []float64
}

// NewDelay creates a feedback delay for the given sample rate and channel
// count.
func NewDelay(sampleRate float64, channels int) (*Delay, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	capacity := int(math.Ceil(maxDelayTimeMs/1000*sampleRate)) + 2

	d := &Delay{
		sampleRate:   sampleRate,
		channels:     channels,
		mix:          defaultDelayMix,
		timeMs:       defaultDelayTimeMs,
		feedback:     defaultDelayFeedback,
		damping:      defaultDelayDamping,
		cachedTimeMs: math.NaN(),
		lines:        make([]*delay.Line, channels),
		dampState:    make([]float64, channels),
	}

	for ch := range d.lines {
		line, err := delay.New(capacity)
		if err != nil {
			return nil, fmt.Errorf("delay: %w", err)
		}

		d.lines[ch] = line
	}

	d.refreshDelaySamples()

	return d, nil
}

// Params returns the parameter schema.
func (d *Delay) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "time", Default: defaultDelayTimeMs, Min: minDelayTimeMs, Max: maxDelayTimeMs},
		{Name: "feedback", Default: defaultDelayFeedback, Min: 0, Max: maxDelayFeedback},
		{Name: "damping", Default: defaultDelayDamping, Min: 0, Max: 1},
		{Name: "mix", Default: defaultDelayMix, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (d *Delay) SetBypass(bypass bool) { d.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (d *Delay) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("delay mix must be in [0, 1]: %f", mix)
	}

	d.mix = mix

	return nil
}

// SetTime sets the delay time in milliseconds.
func (d *Delay) SetTime(ms float64) error {
	if ms < minDelayTimeMs || ms > maxDelayTimeMs || math.IsNaN(ms) {
		return fmt.Errorf("delay time must be in [%g, %g] ms: %f", minDelayTimeMs, maxDelayTimeMs, ms)
	}

	d.timeMs = ms

	return nil
}

// SetFeedback sets the feedback amount in [0, 0.95].
func (d *Delay) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > maxDelayFeedback || math.IsNaN(feedback) {
		return fmt.Errorf("delay feedback must be in [0, %g]: %f", maxDelayFeedback, feedback)
	}

	d.feedback = feedback

	return nil
}

// SetDamping sets the feedback damping in [0, 1]. The value is both the
// one-pole filter coefficient and the dry/damped blend in the feedback path.
func (d *Delay) SetDamping(damping float64) error {
	if damping < 0 || damping > 1 || math.IsNaN(damping) {
		return fmt.Errorf("delay damping must be in [0, 1]: %f", damping)
	}

	d.damping = damping

	return nil
}

// DelaySamples returns the current integer delay in samples.
func (d *Delay) DelaySamples() int { return d.delaySamples }

// Reset clears the delay buffers and damping state.
func (d *Delay) Reset() {
	for ch := range d.lines {
		d.lines[ch].Reset()
		d.dampState[ch] = 0
	}
}

// Process runs one block through the delay.
func (d *Delay) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, d.channels)
	if !ok {
		return false
	}

	if d.bypass {
		passThrough(in, out, d.channels, n)
		return true
	}

	d.refreshDelaySamples()

	offset := d.delaySamples
	feedback := d.feedback
	damping := d.damping
	mix := d.mix

	for ch := 0; ch < d.channels; ch++ {
		line := d.lines[ch]
		src := in[ch]
		dst := out[ch]
		state := d.dampState[ch]

		for i := 0; i < n; i++ {
			dry := src[i]
			delayed := line.Read(offset)

			state = delayed + damping*(state-delayed)
			damped := delayed*(1-damping) + state*damping

			line.Write(dry + damped*feedback)

			dst[i] = mixSample(dry, delayed, mix)
		}

		d.dampState[ch] = core.FlushDenormals(state)
	}

	return true
}

func (d *Delay) refreshDelaySamples() {
	if d.timeMs == d.cachedTimeMs {
		return
	}

	samples := int(math.Round(d.timeMs / 1000 * d.sampleRate))
	if samples < 1 {
		samples = 1
	}

	if maxOffset := d.lines[0].Len() - 1; samples > maxOffset {
		samples = maxOffset
	}

	d.delaySamples = samples
	d.cachedTimeMs = d.timeMs
}
