package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/core"
	"github.com/mixforge/audiofx/dsp/filter/biquad"
	"github.com/mixforge/audiofx/dsp/filter/design"
)

const (
	defaultPurrTone  = 0.5
	defaultPurrEven  = 0.4
	defaultPurrOdd   = 0.5
	defaultPurrLevel = 1.0

	// Pre-gain into the nonlinear paths. The clipper saturates well below
	// full scale so harmonic content appears at typical bass levels.
	harmonicDrive = 6.0

	bassFundamentalCutoffHz = 80.0
	harmonicDCBlockHz       = 7.5
)

// harmonicToneFreqs is the low-pass cutoff table indexed by the quantized
// tone parameter. Entries voice the harmonics from dark to bright.
var harmonicToneFreqs = [...]float64{250, 375, 500, 700, 950}

// harmonicToneIndex quantizes tone in [0, 1] to an index into
// harmonicToneFreqs.
func harmonicToneIndex(tone float64) int {
	idx := int(tone*float64(len(harmonicToneFreqs)-1) + 0.5)
	if idx < 0 {
		idx = 0
	}

	if idx > len(harmonicToneFreqs)-1 {
		idx = len(harmonicToneFreqs) - 1
	}

	return idx
}

// bassPurrChannel holds the per-channel filter bank: the fundamental
// low-pass, the odd-path tone filter and the 4th-order even-path cascade
// with its DC blocker.
type bassPurrChannel struct {
	fundLP    biquad.Section
	oddLP     biquad.Section
	evenChain *biquad.Chain
	dcBlock   biquad.Section
}

// BassPurr thickens bass by mixing the dry fundamental with synthesized odd
// and even harmonics. Three parallel paths per channel: the fundamental is
// the input minus its 80 Hz low-pass, odd harmonics come from hard clipping,
// even harmonics from full-wave rectification. Harmonic levels use a squared
// taper for finer control near zero.
type BassPurr struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	tone  float64
	even  float64
	odd   float64
	level float64

	cachedTone float64

	chans []bassPurrChannel
}

// NewBassPurr creates a bass harmonic generator for the given sample rate and
// channel count.
func NewBassPurr(sampleRate float64, channels int) (*BassPurr, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("bass purr: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("bass purr: %w", err)
	}

	b := &BassPurr{
		sampleRate: sampleRate,
		channels:   channels,
		mix:        1,
		tone:       defaultPurrTone,
		even:       defaultPurrEven,
		odd:        defaultPurrOdd,
		level:      defaultPurrLevel,
		cachedTone: math.NaN(),
		chans:      make([]bassPurrChannel, channels),
	}

	fund := design.ButterworthLowpass(bassFundamentalCutoffHz, sampleRate)
	dc := design.ButterworthHighpass(harmonicDCBlockHz, sampleRate)

	for ch := range b.chans {
		b.chans[ch].fundLP.Coefficients = fund
		b.chans[ch].dcBlock.Coefficients = dc
		b.chans[ch].evenChain = biquad.NewChain(make([]biquad.Coefficients, 2))
	}

	b.refreshTone()

	return b, nil
}

// Params returns the parameter schema.
func (b *BassPurr) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "tone", Default: defaultPurrTone, Min: 0, Max: 1},
		{Name: "even", Default: defaultPurrEven, Min: 0, Max: 1},
		{Name: "odd", Default: defaultPurrOdd, Min: 0, Max: 1},
		{Name: "level", Default: defaultPurrLevel, Min: 0, Max: 1},
		{Name: "mix", Default: 1, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (b *BassPurr) SetBypass(bypass bool) { b.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (b *BassPurr) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("bass purr mix must be in [0, 1]: %f", mix)
	}

	b.mix = mix

	return nil
}

// SetTone sets the harmonic brightness in [0, 1].
func (b *BassPurr) SetTone(tone float64) error {
	if tone < 0 || tone > 1 || math.IsNaN(tone) {
		return fmt.Errorf("bass purr tone must be in [0, 1]: %f", tone)
	}

	b.tone = tone

	return nil
}

// SetEven sets the even-harmonic level in [0, 1].
func (b *BassPurr) SetEven(even float64) error {
	if even < 0 || even > 1 || math.IsNaN(even) {
		return fmt.Errorf("bass purr even must be in [0, 1]: %f", even)
	}

	b.even = even

	return nil
}

// SetOdd sets the odd-harmonic level in [0, 1].
func (b *BassPurr) SetOdd(odd float64) error {
	if odd < 0 || odd > 1 || math.IsNaN(odd) {
		return fmt.Errorf("bass purr odd must be in [0, 1]: %f", odd)
	}

	b.odd = odd

	return nil
}

// SetLevel sets the output level in [0, 1].
func (b *BassPurr) SetLevel(level float64) error {
	if level < 0 || level > 1 || math.IsNaN(level) {
		return fmt.Errorf("bass purr level must be in [0, 1]: %f", level)
	}

	b.level = level

	return nil
}

// Reset clears all filter state.
func (b *BassPurr) Reset() {
	for ch := range b.chans {
		c := &b.chans[ch]
		c.fundLP.Reset()
		c.oddLP.Reset()
		c.evenChain.Reset()
		c.dcBlock.Reset()
	}
}

// Process runs one block through the harmonic generator.
func (b *BassPurr) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, b.channels)
	if !ok {
		return false
	}

	if b.bypass {
		passThrough(in, out, b.channels, n)
		return true
	}

	b.refreshTone()

	evenLevel := b.even * b.even
	oddLevel := b.odd * b.odd
	level := b.level
	mix := b.mix

	for ch := 0; ch < b.channels; ch++ {
		c := &b.chans[ch]
		src := in[ch]
		dst := out[ch]

		for i := 0; i < n; i++ {
			dry := src[i]

			fundamental := dry - c.fundLP.ProcessSample(dry)

			odd := core.Clamp(dry*harmonicDrive, -1, 1)
			odd = c.oddLP.ProcessSample(odd)

			even := math.Abs(dry) * harmonicDrive
			even = c.evenChain.ProcessSample(even)
			even = c.dcBlock.ProcessSample(even)

			sum := fundamental + odd*oddLevel + even*evenLevel
			wet := softLimit(sum) * level

			dst[i] = mixSample(dry, wet, mix)
		}
	}

	return true
}

func (b *BassPurr) refreshTone() {
	if b.tone == b.cachedTone {
		return
	}

	freq := harmonicToneFreqs[harmonicToneIndex(b.tone)]
	coeffs := design.ButterworthLowpass(freq, b.sampleRate)
	cascade := []biquad.Coefficients{coeffs, coeffs}

	// UpdateCoefficients keeps the section states, so a tone change
	// mid-stream retunes the cascade without a restart transient.
	for ch := range b.chans {
		b.chans[ch].oddLP.Coefficients = coeffs
		b.chans[ch].evenChain.UpdateCoefficients(cascade)
	}

	b.cachedTone = b.tone
}
