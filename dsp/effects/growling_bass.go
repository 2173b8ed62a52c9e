package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/core"
	"github.com/mixforge/audiofx/dsp/filter/biquad"
	"github.com/mixforge/audiofx/dsp/filter/design"
)

const (
	defaultGrowl     = 0.6
	defaultGrowlTone = 0.5
	defaultGrowlEven = 0.3
	defaultGrowlOdd  = 0.5

	// Cutoff of the pitch-detection low-pass. High enough to follow any
	// bass fundamental, low enough to ignore harmonics and fret noise.
	growlDetectCutoffHz = 300.0
)

// growlChannel carries the per-channel detection and shaping state. The sub
// oscillator is a square wave derived from the input period: subSign flips on
// every other rising zero crossing of the detection signal, producing a tone
// one octave below the played note.
type growlChannel struct {
	detectLP biquad.Section
	toneLP   biquad.Section

	prevDetect float64
	subSign    float64

	cyclePeak float64
	envelope  float64
}

// GrowlingBass is a monophonic sub-octave and harmonic generator. A 300 Hz
// low-passed copy of the input drives zero-crossing period detection; each
// detected cycle snapshots its peak as the envelope ceiling for the sub
// oscillator and the odd-harmonic clipper.
type GrowlingBass struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	growl float64
	tone  float64
	even  float64
	odd   float64

	cachedTone float64

	chans []growlChannel
}

// NewGrowlingBass creates a sub-octave generator for the given sample rate
// and channel count.
func NewGrowlingBass(sampleRate float64, channels int) (*GrowlingBass, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("growling bass: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("growling bass: %w", err)
	}

	g := &GrowlingBass{
		sampleRate: sampleRate,
		channels:   channels,
		mix:        1,
		growl:      defaultGrowl,
		tone:       defaultGrowlTone,
		even:       defaultGrowlEven,
		odd:        defaultGrowlOdd,
		cachedTone: math.NaN(),
		chans:      make([]growlChannel, channels),
	}

	detect := design.ButterworthLowpass(growlDetectCutoffHz, sampleRate)
	for ch := range g.chans {
		g.chans[ch].detectLP.Coefficients = detect
		g.chans[ch].subSign = 1
	}

	g.refreshTone()

	return g, nil
}

// Params returns the parameter schema.
func (g *GrowlingBass) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "growl", Default: defaultGrowl, Min: 0, Max: 1},
		{Name: "tone", Default: defaultGrowlTone, Min: 0, Max: 1},
		{Name: "even", Default: defaultGrowlEven, Min: 0, Max: 1},
		{Name: "odd", Default: defaultGrowlOdd, Min: 0, Max: 1},
		{Name: "mix", Default: 1, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (g *GrowlingBass) SetBypass(bypass bool) { g.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (g *GrowlingBass) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("growling bass mix must be in [0, 1]: %f", mix)
	}

	g.mix = mix

	return nil
}

// SetGrowl sets the sub-octave level in [0, 1].
func (g *GrowlingBass) SetGrowl(growl float64) error {
	if growl < 0 || growl > 1 || math.IsNaN(growl) {
		return fmt.Errorf("growling bass growl must be in [0, 1]: %f", growl)
	}

	g.growl = growl

	return nil
}

// SetTone sets the harmonic brightness in [0, 1].
func (g *GrowlingBass) SetTone(tone float64) error {
	if tone < 0 || tone > 1 || math.IsNaN(tone) {
		return fmt.Errorf("growling bass tone must be in [0, 1]: %f", tone)
	}

	g.tone = tone

	return nil
}

// SetEven sets the even-harmonic level in [0, 1].
func (g *GrowlingBass) SetEven(even float64) error {
	if even < 0 || even > 1 || math.IsNaN(even) {
		return fmt.Errorf("growling bass even must be in [0, 1]: %f", even)
	}

	g.even = even

	return nil
}

// SetOdd sets the odd-harmonic level in [0, 1].
func (g *GrowlingBass) SetOdd(odd float64) error {
	if odd < 0 || odd > 1 || math.IsNaN(odd) {
		return fmt.Errorf("growling bass odd must be in [0, 1]: %f", odd)
	}

	g.odd = odd

	return nil
}

// Reset clears all detection and filter state.
func (g *GrowlingBass) Reset() {
	for ch := range g.chans {
		c := &g.chans[ch]
		c.detectLP.Reset()
		c.toneLP.Reset()
		c.prevDetect = 0
		c.subSign = 1
		c.cyclePeak = 0
		c.envelope = 0
	}
}

// Process runs one block through the sub-octave generator.
func (g *GrowlingBass) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, g.channels)
	if !ok {
		return false
	}

	if g.bypass {
		passThrough(in, out, g.channels, n)
		return true
	}

	g.refreshTone()

	growl := g.growl
	evenLevel := g.even * g.even
	oddLevel := g.odd * g.odd
	mix := g.mix

	for ch := 0; ch < g.channels; ch++ {
		c := &g.chans[ch]
		src := in[ch]
		dst := out[ch]

		for i := 0; i < n; i++ {
			dry := src[i]

			detect := c.detectLP.ProcessSample(dry)
			if c.prevDetect <= 0 && detect > 0 {
				// Rising zero crossing: one full input cycle has
				// elapsed. Flipping once per cycle yields a square
				// wave at half the input frequency.
				c.subSign = -c.subSign
				c.envelope = c.cyclePeak
				c.cyclePeak = 0
			}

			c.prevDetect = detect

			if a := math.Abs(dry); a > c.cyclePeak {
				c.cyclePeak = a
			}

			sub := c.subSign * c.envelope

			odd := core.Clamp(dry*harmonicDrive, -c.envelope, c.envelope)
			even := math.Abs(dry) * harmonicDrive

			harm := c.toneLP.ProcessSample(odd*oddLevel + even*evenLevel)

			wet := softLimit(dry + sub*growl + harm)

			dst[i] = mixSample(dry, wet, mix)
		}

		c.prevDetect = core.FlushDenormals(c.prevDetect)
	}

	return true
}

func (g *GrowlingBass) refreshTone() {
	if g.tone == g.cachedTone {
		return
	}

	freq := harmonicToneFreqs[harmonicToneIndex(g.tone)]
	coeffs := design.ButterworthLowpass(freq, g.sampleRate)

	for ch := range g.chans {
		g.chans[ch].toneLP.Coefficients = coeffs
	}

	g.cachedTone = g.tone
}
