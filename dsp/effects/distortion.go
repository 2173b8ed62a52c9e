package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/core"
)

const (
	defaultDistortionDrive = 0.5
	defaultDistortionTone  = 0.5
	defaultDistortionLevel = 1.0

	minDistortionLevel = 0.0
	maxDistortionLevel = 2.0

	foldbackMaxIterations = 16
)

// DistortionMode selects the transfer function used by Distortion.
type DistortionMode int

const (
	// DistortionSoftClip is tanh(x*k)/tanh(k) with k = 1+10*drive.
	DistortionSoftClip DistortionMode = iota
	// DistortionHardClip clamps to +/-(1-0.9*drive).
	DistortionHardClip
	// DistortionTube is the asymmetric exponential curve.
	DistortionTube
	// DistortionQuadratic is linear near zero with a quadratic knee.
	DistortionQuadratic
	// DistortionFoldback reflects the signal about a shrinking threshold.
	DistortionFoldback
	// DistortionTubeClip is the cubic polynomial shaper.
	DistortionTubeClip
	// DistortionDiode is the asymmetric x/(1+|x|) soft limiter.
	DistortionDiode

	numDistortionModes
)

// waveshaper is a stateless per-sample transfer function.
type waveshaper func(x, drive float64) float64

var waveshaperTable = [numDistortionModes]waveshaper{
	DistortionSoftClip:  shapeSoftClip,
	DistortionHardClip:  shapeHardClip,
	DistortionTube:      shapeTube,
	DistortionQuadratic: shapeQuadratic,
	DistortionFoldback:  shapeFoldback,
	DistortionTubeClip:  shapeTubeClip,
	DistortionDiode:     shapeDiode,
}

func shapeSoftClip(x, drive float64) float64 {
	k := 1 + 10*drive
	return math.Tanh(x*k) / math.Tanh(k)
}

func shapeHardClip(x, drive float64) float64 {
	limit := 1 - 0.9*drive
	return core.Clamp(x, -limit, limit)
}

func shapeTube(x, drive float64) float64 {
	k := 1 + 5*drive
	if x >= 0 {
		return 1 - math.Exp(-x*k)
	}

	return -1 + math.Exp(x*k*0.8)
}

func shapeQuadratic(x, drive float64) float64 {
	k := 1 + 4*drive

	s := x * k
	a := math.Abs(s)

	if a <= 0.5 {
		return s
	}

	sign := 1.0
	if s < 0 {
		sign = -1
	}

	if a >= 1.5 {
		return sign
	}

	// Quadratic knee from (0.5, 0.5) with unity slope, reaching 1 at 1.5.
	t := a - 0.5

	return sign * (0.5 + t*(1-t/2))
}

func shapeFoldback(x, drive float64) float64 {
	threshold := 1 - 0.8*drive

	y := x * (1 + 3*drive)
	for i := 0; i < foldbackMaxIterations && (y > threshold || y < -threshold); i++ {
		if y > threshold {
			y = 2*threshold - y
		} else {
			y = -2*threshold - y
		}
	}

	return core.Clamp(y, -threshold, threshold)
}

func shapeTubeClip(x, drive float64) float64 {
	k := 1 + 2*drive

	s := core.Clamp(x*k, -1.5, 1.5)

	return s * (1.5 - 0.5*s*s) / k
}

func shapeDiode(x, drive float64) float64 {
	ratio := 0.3 + 1.4*drive
	if x >= 0 {
		s := x * (1 + ratio)
		return s / (1 + s)
	}

	s := x * ratio

	return s / (1 - s)
}

// Distortion is a bank of seven stateless waveshapers followed by a one-pole
// post-distortion tone filter, output level and wet/dry mix.
type Distortion struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	mode  DistortionMode
	drive float64
	tone  float64
	level float64

	toneState []float64 // one-pole lowpass state per channel
}

// NewDistortion creates a soft-clip distortion for the given sample rate
// and channel count.
func NewDistortion(sampleRate float64, channels int) (*Distortion, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("distortion: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("distortion: %w", err)
	}

	return &Distortion{
		sampleRate: sampleRate,
		channels:   channels,
		mix:        1,
		mode:       DistortionSoftClip,
		drive:      defaultDistortionDrive,
		tone:       defaultDistortionTone,
		level:      defaultDistortionLevel,
		toneState:  make([]float64, channels),
	}, nil
}

// Params returns the parameter schema.
func (d *Distortion) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "mode", Default: float64(DistortionSoftClip), Min: 0, Max: float64(numDistortionModes - 1)},
		{Name: "drive", Default: defaultDistortionDrive, Min: 0, Max: 1},
		{Name: "tone", Default: defaultDistortionTone, Min: 0, Max: 1},
		{Name: "level", Default: defaultDistortionLevel, Min: minDistortionLevel, Max: maxDistortionLevel},
		{Name: "mix", Default: 1, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (d *Distortion) SetBypass(bypass bool) { d.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (d *Distortion) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("distortion mix must be in [0, 1]: %f", mix)
	}

	d.mix = mix

	return nil
}

// SetMode selects the transfer function.
func (d *Distortion) SetMode(mode DistortionMode) error {
	if mode < 0 || mode >= numDistortionModes {
		return fmt.Errorf("distortion mode is invalid: %d", mode)
	}

	d.mode = mode

	return nil
}

// SetDrive sets the drive amount in [0, 1].
func (d *Distortion) SetDrive(drive float64) error {
	if drive < 0 || drive > 1 || math.IsNaN(drive) {
		return fmt.Errorf("distortion drive must be in [0, 1]: %f", drive)
	}

	d.drive = drive

	return nil
}

// SetTone sets the post-distortion tone amount in [0, 1]; higher values
// open the one-pole lowpass.
func (d *Distortion) SetTone(tone float64) error {
	if tone < 0 || tone > 1 || math.IsNaN(tone) {
		return fmt.Errorf("distortion tone must be in [0, 1]: %f", tone)
	}

	d.tone = tone

	return nil
}

// SetLevel sets the output level in [0, 2].
func (d *Distortion) SetLevel(level float64) error {
	if level < minDistortionLevel || level > maxDistortionLevel || math.IsNaN(level) {
		return fmt.Errorf("distortion level must be in [%g, %g]: %f",
			minDistortionLevel, maxDistortionLevel, level)
	}

	d.level = level

	return nil
}

// Reset clears the tone filter state.
func (d *Distortion) Reset() {
	for ch := range d.toneState {
		d.toneState[ch] = 0
	}
}

// Process waveshapes one block. The transfer function is resolved once per
// block so the sample loop stays branch-free.
func (d *Distortion) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, d.channels)
	if !ok {
		return false
	}

	if d.bypass {
		passThrough(in, out, d.channels, n)
		return true
	}

	shape := waveshaperTable[d.mode]
	drive := d.drive
	level := d.level
	mix := d.mix
	toneCoeff := 0.1 + 0.8*d.tone
	toneBlend := 0.5 * d.tone

	for ch := 0; ch < d.channels; ch++ {
		src := in[ch]
		dst := out[ch]
		state := d.toneState[ch]

		for i := 0; i < n; i++ {
			dry := src[i]
			wet := shape(dry, drive)

			state += toneCoeff * (wet - state)
			wet = wet*(1-toneBlend) + state*toneBlend

			dst[i] = mixSample(dry, wet*level, mix)
		}

		d.toneState[ch] = core.FlushDenormals(state)
	}

	return true
}
