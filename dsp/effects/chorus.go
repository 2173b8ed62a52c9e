package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/delay"
)

const (
	chorusBaseDelayMs = 7.0
	chorusMaxDepthMs  = 3.0
	chorusMaxVoices   = 4

	defaultChorusRateHz = 0.8
	defaultChorusDepth  = 0.5
	defaultChorusMix    = 0.5
	defaultChorusVoices = 3

	minChorusRateHz = 0.05
	maxChorusRateHz = 10.0
)

// chorusPhaseOffsets spreads the voice LFOs across one cycle.
var chorusPhaseOffsets = [chorusMaxVoices]float64{0, 0.25, 0.5, 0.75}

// Chorus sums up to four phase-offset LFO-modulated fractional delay taps.
// Every voice phase and the write cursor advance exactly once per sample
// regardless of how many voices are audible.
type Chorus struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	rateHz float64
	depth  float64
	voices int

	phases [chorusMaxVoices]float64

	baseDelay float64 // samples
	maxDepth  float64 // samples

	lines []*delay.Line
}

// NewChorus creates a chorus for the given sample rate and channel count.
func NewChorus(sampleRate float64, channels int) (*Chorus, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("chorus: %w", err)
	}

	c := &Chorus{
		sampleRate: sampleRate,
		channels:   channels,
		mix:        defaultChorusMix,
		rateHz:     defaultChorusRateHz,
		depth:      defaultChorusDepth,
		voices:     defaultChorusVoices,
		phases:     chorusPhaseOffsets,
		baseDelay:  chorusBaseDelayMs / 1000 * sampleRate,
		maxDepth:   chorusMaxDepthMs / 1000 * sampleRate,
		lines:      make([]*delay.Line, channels),
	}

	capacity := int(math.Ceil((chorusBaseDelayMs+chorusMaxDepthMs)/1000*sampleRate)) + 4
	for ch := range c.lines {
		line, err := delay.New(capacity)
		if err != nil {
			return nil, fmt.Errorf("chorus: %w", err)
		}

		c.lines[ch] = line
	}

	return c, nil
}

// Params returns the parameter schema.
func (c *Chorus) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "rate", Default: defaultChorusRateHz, Min: minChorusRateHz, Max: maxChorusRateHz},
		{Name: "depth", Default: defaultChorusDepth, Min: 0, Max: 1},
		{Name: "voices", Default: defaultChorusVoices, Min: 1, Max: chorusMaxVoices},
		{Name: "mix", Default: defaultChorusMix, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (c *Chorus) SetBypass(bypass bool) { c.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (c *Chorus) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("chorus mix must be in [0, 1]: %f", mix)
	}

	c.mix = mix

	return nil
}

// SetRate sets the LFO rate in Hz.
func (c *Chorus) SetRate(rateHz float64) error {
	if rateHz < minChorusRateHz || rateHz > maxChorusRateHz || math.IsNaN(rateHz) {
		return fmt.Errorf("chorus rate must be in [%g, %g] Hz: %f", minChorusRateHz, maxChorusRateHz, rateHz)
	}

	c.rateHz = rateHz

	return nil
}

// SetDepth sets the modulation depth in [0, 1].
func (c *Chorus) SetDepth(depth float64) error {
	if depth < 0 || depth > 1 || math.IsNaN(depth) {
		return fmt.Errorf("chorus depth must be in [0, 1]: %f", depth)
	}

	c.depth = depth

	return nil
}

// SetVoices sets the number of audible voices in [1, 4].
func (c *Chorus) SetVoices(voices int) error {
	if voices < 1 || voices > chorusMaxVoices {
		return fmt.Errorf("chorus voices must be in [1, %d]: %d", chorusMaxVoices, voices)
	}

	c.voices = voices

	return nil
}

// Reset clears the delay buffers and rewinds all voice phases to their
// initial offsets.
func (c *Chorus) Reset() {
	for ch := range c.lines {
		c.lines[ch].Reset()
	}

	c.phases = chorusPhaseOffsets
}

// Process runs one block through the chorus.
func (c *Chorus) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, c.channels)
	if !ok {
		return false
	}

	if c.bypass {
		passThrough(in, out, c.channels, n)
		return true
	}

	phaseStep := c.rateHz / c.sampleRate
	depthSamples := c.maxDepth * c.depth
	voices := c.voices
	voiceScale := 1 / float64(voices)
	mix := c.mix

	var offsets [chorusMaxVoices]float64

	for i := 0; i < n; i++ {
		for v := 0; v < chorusMaxVoices; v++ {
			offsets[v] = c.baseDelay + math.Sin(2*math.Pi*c.phases[v])*depthSamples

			c.phases[v] += phaseStep
			if c.phases[v] >= 1 {
				c.phases[v] -= 1
			}
		}

		for ch := 0; ch < c.channels; ch++ {
			line := c.lines[ch]
			dry := in[ch][i]

			line.Put(dry)

			var sum float64
			for v := 0; v < voices; v++ {
				sum += line.ReadLinear(offsets[v])
			}

			out[ch][i] = mixSample(dry, sum*voiceScale, mix)

			line.Advance()
		}
	}

	return true
}
