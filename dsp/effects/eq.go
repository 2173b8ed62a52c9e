package effects

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/filter/biquad"
	"github.com/mixforge/audiofx/dsp/filter/design"
)

const (
	defaultEQLowFreq  = 100.0
	defaultEQMidFreq  = 1000.0
	defaultEQHighFreq = 8000.0
	defaultEQMidQ     = 1.0

	minEQLowFreq  = 20.0
	maxEQLowFreq  = 500.0
	minEQMidFreq  = 200.0
	maxEQMidFreq  = 8000.0
	minEQHighFreq = 1500.0
	maxEQHighFreq = 16000.0

	minEQGainDB = -15.0
	maxEQGainDB = 15.0
	minEQMidQ   = 0.1
	maxEQMidQ   = 10.0
)

// ParametricEQ is a three-band equalizer: low shelf, peaking mid and high
// shelf in series, with one lazily-recomputed coefficient cache per band.
type ParametricEQ struct {
	sampleRate float64
	channels   int

	bypass bool
	mix    float64

	lowFreq, lowGain       float64
	midFreq, midGain, midQ float64
	highFreq, highGain     float64

	// Last values each band's coefficients were derived from. Coefficients
	// are recomputed at block start iff one of these differs.
	cachedLowFreq, cachedLowGain   float64
	cachedMidFreq, cachedMidGain   float64
	cachedMidQ                     float64
	cachedHighFreq, cachedHighGain float64

	low  []biquad.Section // one per channel
	mid  []biquad.Section
	high []biquad.Section
}

// NewParametricEQ creates a flat three-band EQ for the given sample rate
// and channel count.
func NewParametricEQ(sampleRate float64, channels int) (*ParametricEQ, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("parametric eq: %w", err)
	}

	if err := validateChannels(channels); err != nil {
		return nil, fmt.Errorf("parametric eq: %w", err)
	}

	e := &ParametricEQ{
		sampleRate: sampleRate,
		channels:   channels,
		mix:        1,
		lowFreq:    defaultEQLowFreq,
		midFreq:    defaultEQMidFreq,
		midQ:       defaultEQMidQ,
		highFreq:   defaultEQHighFreq,

		cachedLowFreq:  math.NaN(),
		cachedMidFreq:  math.NaN(),
		cachedMidQ:     math.NaN(),
		cachedHighFreq: math.NaN(),

		low:  make([]biquad.Section, channels),
		mid:  make([]biquad.Section, channels),
		high: make([]biquad.Section, channels),
	}
	e.refreshCoefficients()

	return e, nil
}

// Params returns the parameter schema.
func (e *ParametricEQ) Params() []ParamInfo {
	return []ParamInfo{
		{Name: "lowFreq", Default: defaultEQLowFreq, Min: minEQLowFreq, Max: maxEQLowFreq},
		{Name: "lowGain", Default: 0, Min: minEQGainDB, Max: maxEQGainDB},
		{Name: "midFreq", Default: defaultEQMidFreq, Min: minEQMidFreq, Max: maxEQMidFreq},
		{Name: "midGain", Default: 0, Min: minEQGainDB, Max: maxEQGainDB},
		{Name: "midQ", Default: defaultEQMidQ, Min: minEQMidQ, Max: maxEQMidQ},
		{Name: "highFreq", Default: defaultEQHighFreq, Min: minEQHighFreq, Max: maxEQHighFreq},
		{Name: "highGain", Default: 0, Min: minEQGainDB, Max: maxEQGainDB},
		{Name: "mix", Default: 1, Min: 0, Max: 1},
	}
}

// SetBypass enables or disables the exact dry pass-through.
func (e *ParametricEQ) SetBypass(bypass bool) { e.bypass = bypass }

// SetMix sets the wet amount in [0, 1].
func (e *ParametricEQ) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("parametric eq mix must be in [0, 1]: %f", mix)
	}

	e.mix = mix

	return nil
}

// SetLowBand sets the low-shelf corner frequency (Hz) and gain (dB).
func (e *ParametricEQ) SetLowBand(freq, gainDB float64) error {
	if freq < minEQLowFreq || freq > maxEQLowFreq || math.IsNaN(freq) {
		return fmt.Errorf("eq low frequency must be in [%g, %g]: %f", minEQLowFreq, maxEQLowFreq, freq)
	}

	if gainDB < minEQGainDB || gainDB > maxEQGainDB || math.IsNaN(gainDB) {
		return fmt.Errorf("eq low gain must be in [%g, %g]: %f", minEQGainDB, maxEQGainDB, gainDB)
	}

	e.lowFreq = freq
	e.lowGain = gainDB

	return nil
}

// SetMidBand sets the peaking band center frequency (Hz), gain (dB) and Q.
func (e *ParametricEQ) SetMidBand(freq, gainDB, q float64) error {
	if freq < minEQMidFreq || freq > maxEQMidFreq || math.IsNaN(freq) {
		return fmt.Errorf("eq mid frequency must be in [%g, %g]: %f", minEQMidFreq, maxEQMidFreq, freq)
	}

	if gainDB < minEQGainDB || gainDB > maxEQGainDB || math.IsNaN(gainDB) {
		return fmt.Errorf("eq mid gain must be in [%g, %g]: %f", minEQGainDB, maxEQGainDB, gainDB)
	}

	if q < minEQMidQ || q > maxEQMidQ || math.IsNaN(q) {
		return fmt.Errorf("eq mid q must be in [%g, %g]: %f", minEQMidQ, maxEQMidQ, q)
	}

	e.midFreq = freq
	e.midGain = gainDB
	e.midQ = q

	return nil
}

// SetHighBand sets the high-shelf corner frequency (Hz) and gain (dB).
func (e *ParametricEQ) SetHighBand(freq, gainDB float64) error {
	if freq < minEQHighFreq || freq > maxEQHighFreq || math.IsNaN(freq) {
		return fmt.Errorf("eq high frequency must be in [%g, %g]: %f", minEQHighFreq, maxEQHighFreq, freq)
	}

	if gainDB < minEQGainDB || gainDB > maxEQGainDB || math.IsNaN(gainDB) {
		return fmt.Errorf("eq high gain must be in [%g, %g]: %f", minEQGainDB, maxEQGainDB, gainDB)
	}

	e.highFreq = freq
	e.highGain = gainDB

	return nil
}

// Reset clears all filter state.
func (e *ParametricEQ) Reset() {
	for ch := 0; ch < e.channels; ch++ {
		e.low[ch].Reset()
		e.mid[ch].Reset()
		e.high[ch].Reset()
	}
}

// Process runs one block through the three-band cascade.
func (e *ParametricEQ) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, e.channels)
	if !ok {
		return false
	}

	if e.bypass {
		passThrough(in, out, e.channels, n)
		return true
	}

	e.refreshCoefficients()

	mix := e.mix
	for ch := 0; ch < e.channels; ch++ {
		low := &e.low[ch]
		mid := &e.mid[ch]
		high := &e.high[ch]
		src := in[ch]
		dst := out[ch]

		for i := 0; i < n; i++ {
			dry := src[i]
			wet := high.ProcessSample(mid.ProcessSample(low.ProcessSample(dry)))
			dst[i] = mixSample(dry, wet, mix)
		}
	}

	return true
}

// refreshCoefficients recomputes each band's coefficients iff one of its
// parameters changed since the previous block. The per-band cache keeps the
// trigonometry off the steady-state block path.
func (e *ParametricEQ) refreshCoefficients() {
	if e.lowFreq != e.cachedLowFreq || e.lowGain != e.cachedLowGain {
		c := design.LowShelf(e.lowFreq, e.lowGain, e.sampleRate)
		for ch := range e.low {
			e.low[ch].Coefficients = c
		}

		e.cachedLowFreq = e.lowFreq
		e.cachedLowGain = e.lowGain
	}

	if e.midFreq != e.cachedMidFreq || e.midGain != e.cachedMidGain || e.midQ != e.cachedMidQ {
		c := design.Peak(e.midFreq, e.midGain, e.midQ, e.sampleRate)
		for ch := range e.mid {
			e.mid[ch].Coefficients = c
		}

		e.cachedMidFreq = e.midFreq
		e.cachedMidGain = e.midGain
		e.cachedMidQ = e.midQ
	}

	if e.highFreq != e.cachedHighFreq || e.highGain != e.cachedHighGain {
		c := design.HighShelf(e.highFreq, e.highGain, e.sampleRate)
		for ch := range e.high {
			e.high[ch].Coefficients = c
		}

		e.cachedHighFreq = e.highFreq
		e.cachedHighGain = e.highGain
	}
}
