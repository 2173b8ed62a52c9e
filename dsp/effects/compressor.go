package effects

import (
	"fmt"
	"math"
)

const (
	defaultCompThresholdDB = -18.0
	defaultCompRatio       = 3.0
	defaultCompAttackMs    = 10.0
	defaultCompReleaseMs   = 120.0
	defaultCompMakeupDB    = 0.0

	minCompThresholdDB = -60.0
	maxCompThresholdDB = 0.0
	minCompRatio       = 1.0
	maxCompRatio       = 20.0
	minCompAttackMs    = 0.1
	maxCompAttackMs    = 200.0
	minCompReleaseMs   = 10.0
	maxCompReleaseMs   = 2000.0
	minCompMakeupDB    = 0.0
	maxCompMakeupDB    = 24.0

	// Fixed pole smoothing the applied gain toward the gain computer's
	// target; avoids audible stepping when the target moves quickly.
	compGainRetain = 0.999
	compGainBlend  = 1 - compGainRetain
)

// Compressor is a peak-detecting downward compressor with a single shared
// detector: the gain derived from the cross-channel peak envelope is applied
// to every channel identically.
type Compressor struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	thresholdDB float64
	ratio       float64
	attackMs    float64
	releaseMs   float64
	makeupDB    float64

	// Derived in the setters so the block loop only multiplies.
	thresholdLin float64
	makeupLin    float64
	attackCoeff  float64
	releaseCoeff float64

	envelope      float64
	gainReduction float64
}

// NewCompressor creates a compressor for the given sample rate and channel
// count.
func NewCompressor(sampleRate float64, channels int) (*Compressor, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}

	c := &Compressor{
		sampleRate:    sampleRate,
		channels:      channels,
		mix:           1,
		thresholdDB:   defaultCompThresholdDB,
		ratio:         defaultCompRatio,
		attackMs:      defaultCompAttackMs,
		releaseMs:     defaultCompReleaseMs,
		makeupDB:      defaultCompMakeupDB,
		gainReduction: 1,
	}
	c.recalculate()

	return c, nil
}

// Params returns the parameter schema.
func (c *Compressor) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "threshold", Default: defaultCompThresholdDB, Min: minCompThresholdDB, Max: maxCompThresholdDB},
		{Name: "ratio", Default: defaultCompRatio, Min: minCompRatio, Max: maxCompRatio},
		{Name: "attack", Default: defaultCompAttackMs, Min: minCompAttackMs, Max: maxCompAttackMs},
		{Name: "release", Default: defaultCompReleaseMs, Min: minCompReleaseMs, Max: maxCompReleaseMs},
		{Name: "makeup", Default: defaultCompMakeupDB, Min: minCompMakeupDB, Max: maxCompMakeupDB},
		{Name: "mix", Default: 1, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (c *Compressor) SetBypass(bypass bool) { c.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (c *Compressor) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("compressor mix must be in [0, 1]: %f", mix)
	}

	c.mix = mix

	return nil
}

// SetThreshold sets the threshold in dBFS.
func (c *Compressor) SetThreshold(dB float64) error {
	if dB < minCompThresholdDB || dB > maxCompThresholdDB || math.IsNaN(dB) {
		return fmt.Errorf("compressor threshold must be in [%g, %g] dB: %f",
			minCompThresholdDB, maxCompThresholdDB, dB)
	}

	c.thresholdDB = dB
	c.recalculate()

	return nil
}

// SetRatio sets the compression ratio.
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minCompRatio || ratio > maxCompRatio || math.IsNaN(ratio) {
		return fmt.Errorf("compressor ratio must be in [%g, %g]: %f", minCompRatio, maxCompRatio, ratio)
	}

	c.ratio = ratio

	return nil
}

// SetAttack sets the envelope attack time in milliseconds.
func (c *Compressor) SetAttack(ms float64) error {
	if ms < minCompAttackMs || ms > maxCompAttackMs || math.IsNaN(ms) {
		return fmt.Errorf("compressor attack must be in [%g, %g] ms: %f",
			minCompAttackMs, maxCompAttackMs, ms)
	}

	c.attackMs = ms
	c.recalculate()

	return nil
}

// SetRelease sets the envelope release time in milliseconds.
func (c *Compressor) SetRelease(ms float64) error {
	if ms < minCompReleaseMs || ms > maxCompReleaseMs || math.IsNaN(ms) {
		return fmt.Errorf("compressor release must be in [%g, %g] ms: %f",
			minCompReleaseMs, maxCompReleaseMs, ms)
	}

	c.releaseMs = ms
	c.recalculate()

	return nil
}

// SetMakeupGain sets the post-compression makeup gain in dB.
func (c *Compressor) SetMakeupGain(dB float64) error {
	if dB < minCompMakeupDB || dB > maxCompMakeupDB || math.IsNaN(dB) {
		return fmt.Errorf("compressor makeup gain must be in [%g, %g] dB: %f",
			minCompMakeupDB, maxCompMakeupDB, dB)
	}

	c.makeupDB = dB
	c.recalculate()

	return nil
}

// GainReduction returns the currently applied smoothed gain factor.
func (c *Compressor) GainReduction() float64 { return c.gainReduction }

// Envelope returns the current detector envelope (linear).
func (c *Compressor) Envelope() float64 { return c.envelope }

// Reset clears the envelope and applied gain.
func (c *Compressor) Reset() {
	c.envelope = 0
	c.gainReduction = 1
}

// Process compresses one block. The detector tracks the peak across all
// channels; the resulting gain is applied to every channel identically.
func (c *Compressor) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, c.channels)
	if !ok {
		return false
	}

	if c.bypass {
		passThrough(in, out, c.channels, n)
		return true
	}

	ratioFactor := 1 - 1/c.ratio
	threshold := c.thresholdLin
	makeup := c.makeupLin
	mix := c.mix

	for i := 0; i < n; i++ {
		var peak float64

		for ch := 0; ch < c.channels; ch++ {
			if a := math.Abs(in[ch][i]); a > peak {
				peak = a
			}
		}

		// Asymmetric one-pole follower.
		if peak > c.envelope {
			c.envelope = peak + c.attackCoeff*(c.envelope-peak)
		} else {
			c.envelope = peak + c.releaseCoeff*(c.envelope-peak)
		}

		gain := 1.0
		if c.envelope > threshold {
			overDB := 20 * mathLog10(c.envelope/threshold)
			reductionDB := overDB * ratioFactor
			gain = mathPower10(-reductionDB / 20)
		}

		c.gainReduction = c.gainReduction*compGainRetain + gain*compGainBlend

		applied := c.gainReduction * makeup
		for ch := 0; ch < c.channels; ch++ {
			dry := in[ch][i]
			out[ch][i] = mixSample(dry, dry*applied, mix)
		}
	}

	return true
}

func (c *Compressor) recalculate() {
	c.thresholdLin = math.Pow(10, c.thresholdDB/20)
	c.makeupLin = math.Pow(10, c.makeupDB/20)
	c.attackCoeff = math.Exp(-1 / (c.attackMs * c.sampleRate / 1000))
	c.releaseCoeff = math.Exp(-1 / (c.releaseMs * c.sampleRate / 1000))
}
