package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/core"
	"github.com/mixforge/audiofx/dsp/delay"
)

const (
	numReverbCombs     = 8
	numReverbAllpasses = 4

	reverbReferenceSampleRate = 44100.0
	reverbAllpassFeedback     = 0.5

	// Right-channel delay lengths are offset by this many samples (at the
	// reference rate) to decorrelate the stereo wet signal.
	reverbStereoSpread = 23

	defaultReverbRoomSize   = 0.5
	defaultReverbDamping    = 0.5
	defaultReverbDecaySec   = 2.0
	defaultReverbWidth      = 1.0
	defaultReverbPredelayMs = 0.0
	defaultReverbMix        = 0.3

	minReverbDecaySec   = 0.1
	maxReverbDecaySec   = 10.0
	maxReverbPredelayMs = 100.0

	maxReverbChannels = 2
)

// Comb and allpass delay lengths in samples at the reference rate.
var (
	reverbCombTunings    = [numReverbCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTunings = [numReverbAllpasses]int{556, 441, 341, 225}
)

// Reverb is a Schroeder/Freeverb style reverberator: a mono pre-delayed input
// feeds eight parallel damped comb filters per output channel followed by four
// series allpass diffusers. The two internal banks share tunings except for a
// fixed stereo spread on the right. Supports one or two channels.
type Reverb struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	roomSize   float64
	damping    float64
	decaySec   float64
	width      float64
	predelayMs float64

	cachedRoomSize   float64
	cachedDecaySec   float64
	cachedPredelayMs float64

	combFeedback    float64
	predelaySamples int

	predelay *delay.Line

	combsL     [numReverbCombs]reverbComb
	combsR     [numReverbCombs]reverbComb
	allpassesL [numReverbAllpasses]reverbAllpass
	allpassesR [numReverbAllpasses]reverbAllpass
}

// NewReverb creates a reverb for the given sample rate and channel count.
// Channels must be 1 or 2.
func NewReverb(sampleRate float64, channels int) (*Reverb, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	if channels < minEffectChannels || channels > maxReverbChannels {
		return nil, fmt.Errorf("reverb channels must be in [%d, %d]: %d",
			minEffectChannels, maxReverbChannels, channels)
	}

	r := &Reverb{
		sampleRate:       sampleRate,
		channels:         channels,
		mix:              defaultReverbMix,
		roomSize:         defaultReverbRoomSize,
		damping:          defaultReverbDamping,
		decaySec:         defaultReverbDecaySec,
		width:            defaultReverbWidth,
		predelayMs:       defaultReverbPredelayMs,
		cachedRoomSize:   math.NaN(),
		cachedDecaySec:   math.NaN(),
		cachedPredelayMs: math.NaN(),
	}

	scale := sampleRate / reverbReferenceSampleRate
	for i := range reverbCombTunings {
		r.combsL[i].resize(scaledTuning(reverbCombTunings[i], scale))
		r.combsR[i].resize(scaledTuning(reverbCombTunings[i]+reverbStereoSpread, scale))
	}

	for i := range reverbAllpassTunings {
		r.allpassesL[i].resize(scaledTuning(reverbAllpassTunings[i], scale))
		r.allpassesR[i].resize(scaledTuning(reverbAllpassTunings[i]+reverbStereoSpread, scale))
	}

	capacity := int(math.Ceil(maxReverbPredelayMs/1000*sampleRate)) + 2

	line, err := delay.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}

	r.predelay = line
	r.refreshParameters()

	return r, nil
}

func scaledTuning(samples int, scale float64) int {
	n := int(math.Round(float64(samples) * scale))
	if n < 1 {
		n = 1
	}

	return n
}

// Params returns the parameter schema.
func (r *Reverb) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "roomSize", Default: defaultReverbRoomSize, Min: 0, Max: 1},
		{Name: "damping", Default: defaultReverbDamping, Min: 0, Max: 1},
		{Name: "decay", Default: defaultReverbDecaySec, Min: minReverbDecaySec, Max: maxReverbDecaySec},
		{Name: "width", Default: defaultReverbWidth, Min: 0, Max: 1},
		{Name: "predelay", Default: defaultReverbPredelayMs, Min: 0, Max: maxReverbPredelayMs},
		{Name: "mix", Default: defaultReverbMix, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (r *Reverb) SetBypass(bypass bool) { r.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (r *Reverb) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("reverb mix must be in [0, 1]: %f", mix)
	}

	r.mix = mix

	return nil
}

// SetRoomSize sets the room size in [0, 1].
func (r *Reverb) SetRoomSize(roomSize float64) error {
	if roomSize < 0 || roomSize > 1 || math.IsNaN(roomSize) {
		return fmt.Errorf("reverb room size must be in [0, 1]: %f", roomSize)
	}

	r.roomSize = roomSize

	return nil
}

// SetDamping sets the comb feedback damping in [0, 1].
func (r *Reverb) SetDamping(damping float64) error {
	if damping < 0 || damping > 1 || math.IsNaN(damping) {
		return fmt.Errorf("reverb damping must be in [0, 1]: %f", damping)
	}

	r.damping = damping

	return nil
}

// SetDecay sets the RT60 decay time in seconds.
func (r *Reverb) SetDecay(seconds float64) error {
	if seconds < minReverbDecaySec || seconds > maxReverbDecaySec || math.IsNaN(seconds) {
		return fmt.Errorf("reverb decay must be in [%g, %g] s: %f",
			minReverbDecaySec, maxReverbDecaySec, seconds)
	}

	r.decaySec = seconds

	return nil
}

// SetWidth sets the stereo width in [0, 1]. Width 0 collapses the wet signal
// to mono; width 1 keeps the two banks fully separated.
func (r *Reverb) SetWidth(width float64) error {
	if width < 0 || width > 1 || math.IsNaN(width) {
		return fmt.Errorf("reverb width must be in [0, 1]: %f", width)
	}

	r.width = width

	return nil
}

// SetPredelay sets the pre-delay in milliseconds.
func (r *Reverb) SetPredelay(ms float64) error {
	if ms < 0 || ms > maxReverbPredelayMs || math.IsNaN(ms) {
		return fmt.Errorf("reverb predelay must be in [0, %g] ms: %f", maxReverbPredelayMs, ms)
	}

	r.predelayMs = ms

	return nil
}

// Reset clears all comb, allpass and pre-delay state.
func (r *Reverb) Reset() {
	for i := range r.combsL {
		r.combsL[i].reset()
		r.combsR[i].reset()
	}

	for i := range r.allpassesL {
		r.allpassesL[i].reset()
		r.allpassesR[i].reset()
	}

	r.predelay.Reset()
}

// Process runs one block through the reverb.
func (r *Reverb) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, r.channels)
	if !ok {
		return false
	}

	if r.bypass {
		passThrough(in, out, r.channels, n)
		return true
	}

	r.refreshParameters()

	feedback := r.combFeedback
	damping := r.damping
	mix := r.mix
	gainL := (1 + r.width) / 2
	gainR := (1 - r.width) / 2

	for i := 0; i < n; i++ {
		mono := in[0][i]
		if r.channels == 2 {
			mono = (mono + in[1][i]) * 0.5
		}

		if r.predelaySamples > 0 {
			delayed := r.predelay.Read(r.predelaySamples)
			r.predelay.Write(mono)
			mono = delayed
		}

		var wetL float64
		for c := range r.combsL {
			wetL += r.combsL[c].process(mono, feedback, damping)
		}

		wetL /= numReverbCombs
		for a := range r.allpassesL {
			wetL = r.allpassesL[a].process(wetL)
		}

		if r.channels == 1 {
			out[0][i] = mixSample(in[0][i], wetL, mix)
			continue
		}

		var wetR float64
		for c := range r.combsR {
			wetR += r.combsR[c].process(mono, feedback, damping)
		}

		wetR /= numReverbCombs
		for a := range r.allpassesR {
			wetR = r.allpassesR[a].process(wetR)
		}

		out[0][i] = mixSample(in[0][i], wetL*gainL+wetR*gainR, mix)
		out[1][i] = mixSample(in[1][i], wetR*gainL+wetL*gainR, mix)
	}

	for c := range r.combsL {
		r.combsL[c].state = core.FlushDenormals(r.combsL[c].state)
		r.combsR[c].state = core.FlushDenormals(r.combsR[c].state)
	}

	return true
}

func (r *Reverb) refreshParameters() {
	if r.roomSize != r.cachedRoomSize || r.decaySec != r.cachedDecaySec {
		decayFactor := math.Pow(0.001, 1/(r.decaySec*r.sampleRate))
		r.combFeedback = (0.7 + 0.28*r.roomSize) * decayFactor
		r.cachedRoomSize = r.roomSize
		r.cachedDecaySec = r.decaySec
	}

	if r.predelayMs != r.cachedPredelayMs {
		samples := int(math.Round(r.predelayMs / 1000 * r.sampleRate))
		if maxOffset := r.predelay.Len() - 1; samples > maxOffset {
			samples = maxOffset
		}

		r.predelaySamples = samples
		r.cachedPredelayMs = r.predelayMs
	}
}

// reverbComb is a feedback comb filter with a one-pole low-pass in its
// feedback path.
type reverbComb struct {
	buffer []float64
	index  int
	state  float64
}

func (c *reverbComb) resize(size int) {
	c.buffer = make([]float64, size)
	c.index = 0
	c.state = 0
}

func (c *reverbComb) reset() {
	for i := range c.buffer {
		c.buffer[i] = 0
	}

	c.index = 0
	c.state = 0
}

func (c *reverbComb) process(input, feedback, damping float64) float64 {
	out := c.buffer[c.index]

	c.state = out*(1-damping) + c.state*damping
	c.buffer[c.index] = input + c.state*feedback

	c.index++
	if c.index >= len(c.buffer) {
		c.index = 0
	}

	return out
}

// reverbAllpass is a Schroeder allpass diffuser with fixed feedback.
type reverbAllpass struct {
	buffer []float64
	index  int
}

func (a *reverbAllpass) resize(size int) {
	a.buffer = make([]float64, size)
	a.index = 0
}

func (a *reverbAllpass) reset() {
	for i := range a.buffer {
		a.buffer[i] = 0
	}

	a.index = 0
}

func (a *reverbAllpass) process(input float64) float64 {
	buffered := a.buffer[a.index]
	out := buffered - input

	a.buffer[a.index] = input + buffered*reverbAllpassFeedback

	a.index++
	if a.index >= len(a.buffer) {
		a.index = 0
	}

	return out
}
