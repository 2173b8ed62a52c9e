package effects

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/mixforge/audiofx/dsp/window"
)

const (
	defaultMeterIntervalMs = 40.0
	defaultMeterQueueSize  = 8

	minMeterIntervalMs = 5.0
	maxMeterIntervalMs = 1000.0

	// Per-block smoothing constants for the displayed values.
	meterRMSSmoothing = 0.95
	meterPeakDecay    = 0.9995

	// Largest block the vectorized sum-of-squares path handles without
	// falling back to the scalar loop.
	meterScratchSize = 4096

	maxMeterChannels = 2
)

// Levels is one meter report. For mono input the right-channel fields mirror
// the left. Spectrum is nil unless spectrum analysis is enabled; when set it
// holds linear magnitude bins up to Nyquist and stays valid until the report
// after next.
type Levels struct {
	PeakL float64
	PeakR float64
	RMSL  float64
	RMSR  float64

	Spectrum []float64
}

// MeterOption configures a Meter.
type MeterOption func(*meterConfig)

type meterConfig struct {
	intervalMs float64
	queueSize  int
	fftSize    int
}

func defaultMeterConfig() meterConfig {
	return meterConfig{
		intervalMs: defaultMeterIntervalMs,
		queueSize:  defaultMeterQueueSize,
	}
}

// WithReportInterval sets the report cadence in milliseconds.
func WithReportInterval(ms float64) MeterOption {
	return func(cfg *meterConfig) {
		if ms >= minMeterIntervalMs && ms <= maxMeterIntervalMs {
			cfg.intervalMs = ms
		}
	}
}

// WithReportQueue sets the report channel capacity.
func WithReportQueue(size int) MeterOption {
	return func(cfg *meterConfig) {
		if size > 0 {
			cfg.queueSize = size
		}
	}
}

// WithSpectrum enables spectrum analysis over the given FFT size.
// The size must be a power of two.
func WithSpectrum(fftSize int) MeterOption {
	return func(cfg *meterConfig) {
		cfg.fftSize = fftSize
	}
}

// Meter measures peak and RMS levels per channel and passes audio through
// unchanged. Reports are emitted on a buffered channel at a fixed cadence;
// when the consumer lags, reports are dropped rather than blocking the audio
// thread. Supports one or two channels.
type Meter struct {
	sampleRate float64
	channels   int

	peak [maxMeterChannels]float64
	rms  [maxMeterChannels]float64

	intervalSamples    int
	samplesUntilReport int

	reports chan Levels
	scratch []float64

	// Spectrum state, nil/empty when disabled.
	plan      *algofft.Plan[complex128]
	fftSize   int
	win       []float64
	ring      []float64
	ringPos   int
	frame     []float64
	fftInput  []complex128
	fftOutput []complex128
	mags      [2][]float64
	magIndex  int
}

// NewMeter creates a level meter for the given sample rate and channel count.
// Channels must be 1 or 2.
func NewMeter(sampleRate float64, channels int, opts ...MeterOption) (*Meter, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, fmt.Errorf("meter: %w", err)
	}

	if channels < minEffectChannels || channels > maxMeterChannels {
		return nil, fmt.Errorf("meter channels must be in [%d, %d]: %d",
			minEffectChannels, maxMeterChannels, channels)
	}

	cfg := defaultMeterConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	m := &Meter{
		sampleRate: sampleRate,
		channels:   channels,
		reports:    make(chan Levels, cfg.queueSize),
		scratch:    make([]float64, meterScratchSize),
	}

	m.intervalSamples = int(math.Round(cfg.intervalMs / 1000 * sampleRate))
	if m.intervalSamples < 1 {
		m.intervalSamples = 1
	}

	m.samplesUntilReport = m.intervalSamples

	if cfg.fftSize > 0 {
		if cfg.fftSize&(cfg.fftSize-1) != 0 {
			return nil, fmt.Errorf("meter fft size must be a power of two: %d", cfg.fftSize)
		}

		plan, err := algofft.NewPlan64(cfg.fftSize)
		if err != nil {
			return nil, fmt.Errorf("meter: %w", err)
		}

		m.plan = plan
		m.fftSize = cfg.fftSize
		m.win = window.Generate(window.TypeHann, cfg.fftSize, window.WithPeriodic())
		m.ring = make([]float64, cfg.fftSize)
		m.frame = make([]float64, cfg.fftSize)
		m.fftInput = make([]complex128, cfg.fftSize)
		m.fftOutput = make([]complex128, cfg.fftSize)
		m.mags[0] = make([]float64, cfg.fftSize/2+1)
		m.mags[1] = make([]float64, cfg.fftSize/2+1)
	}

	return m, nil
}

// Params returns the parameter schema. The meter has no control parameters.
func (m *Meter) Params() []ParamInfo { return nil }

// Reports returns the report channel. Reports are dropped when the channel
// is full.
func (m *Meter) Reports() <-chan Levels { return m.reports }

// Reset clears the measured levels and spectrum history.
func (m *Meter) Reset() {
	for ch := range m.peak {
		m.peak[ch] = 0
		m.rms[ch] = 0
	}

	m.samplesUntilReport = m.intervalSamples

	for i := range m.ring {
		m.ring[i] = 0
	}

	m.ringPos = 0
}

// Process measures one block and copies it through unchanged.
func (m *Meter) Process(in, out [][]float64) bool {
	n, ok := blockLen(in, out, m.channels)
	if !ok {
		return false
	}

	passThrough(in, out, m.channels, n)

	decay := math.Pow(meterPeakDecay, float64(n))

	for ch := 0; ch < m.channels; ch++ {
		src := in[ch]

		var blockPeak float64
		for i := 0; i < n; i++ {
			if a := math.Abs(src[i]); a > blockPeak {
				blockPeak = a
			}
		}

		sum := m.sumSquares(src[:n])

		m.rms[ch] = meterRMSSmoothing*m.rms[ch] + (1-meterRMSSmoothing)*math.Sqrt(sum/float64(n))

		if p := m.peak[ch] * decay; blockPeak > p {
			m.peak[ch] = blockPeak
		} else {
			m.peak[ch] = p
		}
	}

	if m.ring != nil {
		m.pushSpectrumSamples(in, n)
	}

	m.samplesUntilReport -= n
	if m.samplesUntilReport <= 0 {
		m.samplesUntilReport += m.intervalSamples
		m.emitReport()
	}

	return true
}

func (m *Meter) sumSquares(src []float64) float64 {
	var sum float64

	if len(src) <= len(m.scratch) {
		squares := m.scratch[:len(src)]
		vecmath.MulBlock(squares, src, src)

		for _, s := range squares {
			sum += s
		}

		return sum
	}

	for _, x := range src {
		sum += x * x
	}

	return sum
}

func (m *Meter) pushSpectrumSamples(in [][]float64, n int) {
	for i := 0; i < n; i++ {
		mono := in[0][i]
		if m.channels == 2 {
			mono = (mono + in[1][i]) * 0.5
		}

		m.ring[m.ringPos] = mono

		m.ringPos++
		if m.ringPos >= m.fftSize {
			m.ringPos = 0
		}
	}
}

func (m *Meter) emitReport() {
	lv := Levels{
		PeakL: m.peak[0],
		RMSL:  m.rms[0],
		PeakR: m.peak[0],
		RMSR:  m.rms[0],
	}

	if m.channels == 2 {
		lv.PeakR = m.peak[1]
		lv.RMSR = m.rms[1]
	}

	if m.plan != nil {
		lv.Spectrum = m.computeSpectrum()
	}

	select {
	case m.reports <- lv:
	default:
	}
}

// computeSpectrum windows the most recent fftSize mono samples and returns
// linear magnitudes. Output buffers alternate so the previous report's slice
// stays readable while this one is filled.
func (m *Meter) computeSpectrum() []float64 {
	tail := copy(m.frame, m.ring[m.ringPos:])
	copy(m.frame[tail:], m.ring[:m.ringPos])

	window.Apply(m.frame, m.win)

	for i, x := range m.frame {
		m.fftInput[i] = complex(x, 0)
	}

	if err := m.plan.Forward(m.fftOutput, m.fftInput); err != nil {
		return nil
	}

	mags := m.mags[m.magIndex]
	m.magIndex = 1 - m.magIndex

	scale := 2 / float64(m.fftSize)
	for i := range mags {
		mags[i] = cmplx.Abs(m.fftOutput[i]) * scale
	}

	return mags
}
