package effects

import (
	"fmt"
	"math"
)

const (
	minEffectChannels = 1
	maxEffectChannels = 8
)

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("sample rate must be positive and finite: %f", sampleRate)
	}

	return nil
}

func validateChannels(channels int) error {
	if channels < minEffectChannels || channels > maxEffectChannels {
		return fmt.Errorf("channel count must be in [%d, %d]: %d",
			minEffectChannels, maxEffectChannels, channels)
	}

	return nil
}

// blockLen validates the channel buffers for one Process call and returns
// the block length. ok is false when the input is absent or the buffers are
// too short, in which case the unit passes through without writing output.
func blockLen(in, out [][]float64, channels int) (int, bool) {
	if len(in) < channels || len(out) < channels {
		return 0, false
	}

	n := len(in[0])
	if n == 0 {
		return 0, false
	}

	for ch := 0; ch < channels; ch++ {
		if len(in[ch]) < n || len(out[ch]) < n {
			return 0, false
		}
	}

	return n, true
}

// passThrough copies the dry input to the output unchanged.
func passThrough(in, out [][]float64, channels, n int) {
	for ch := 0; ch < channels; ch++ {
		copy(out[ch][:n], in[ch][:n])
	}
}

// mixSample blends dry and wet by the unit's wet/dry control.
func mixSample(dry, wet, mix float64) float64 {
	return dry*(1-mix) + wet*mix
}

// softLimit is the x/(1+|x|) saturating limiter shared by the harmonic
// generators.
func softLimit(x float64) float64 {
	return x / (1 + math.Abs(x))
}
