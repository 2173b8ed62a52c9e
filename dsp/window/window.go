// Package window generates analysis window functions for FFT framing.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric
// form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns window coefficients of the given length, or nil when the
// length is not positive.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = eval(t, samplePosition(i, length, cfg.periodic))
	}

	return out
}

// Apply multiplies buf in-place by previously generated coefficients,
// truncating to the shorter of the two.
func Apply(buf, coeffs []float64) {
	n := len(buf)
	if len(coeffs) < n {
		n = len(coeffs)
	}

	if n == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf[:n], coeffs[:n])
}

// samplePosition maps index i to x in [0, 1). The symmetric form places the
// last sample back at the window edge; the periodic form leaves it one step
// short so consecutive FFT frames tile seamlessly.
func samplePosition(i, length int, periodic bool) float64 {
	denom := length - 1
	if periodic {
		denom = length
	}

	if denom <= 0 {
		return 0
	}

	return float64(i) / float64(denom)
}

func eval(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return 0.5 - 0.5*math.Cos(2*math.Pi*x)
	case TypeHamming:
		return 0.54 - 0.46*math.Cos(2*math.Pi*x)
	case TypeBlackman:
		return 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
	default:
		return 1
	}
}
