package design

import (
	"math"

	"github.com/mixforge/audiofx/dsp/filter/biquad"
)

const (
	defaultQ = 1 / math.Sqrt2

	// Fixed shelf slope for the low/high shelf responses. The derived
	// alpha term is computed from this rather than from a Q parameter.
	shelfSlope = 0.9

	// Shelves close to Nyquist are pre-warped; the warp threshold is a
	// quarter of the Nyquist frequency.
	preWarpFraction = 0.25

	// Frequencies are kept below 0.98*Nyquist to stay clear of the
	// tangent singularity at Nyquist.
	maxFrequencyFraction = 0.98
)

// Lowpass designs an RBJ lowpass biquad at freq (Hz) with quality factor q.
// A non-positive q selects the Butterworth value 1/sqrt(2).
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs an RBJ highpass biquad at freq (Hz) with quality factor q.
// A non-positive q selects the Butterworth value 1/sqrt(2).
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// ButterworthLowpass designs a maximally flat lowpass section (Q = 1/sqrt2).
func ButterworthLowpass(freq, sampleRate float64) biquad.Coefficients {
	return Lowpass(freq, defaultQ, sampleRate)
}

// ButterworthHighpass designs a maximally flat highpass section (Q = 1/sqrt2).
func ButterworthHighpass(freq, sampleRate float64) biquad.Coefficients {
	return Highpass(freq, defaultQ, sampleRate)
}

// Peak designs an RBJ peaking-EQ biquad with gain in dB.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)
	a := math.Pow(10, gainDB/40)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// LowShelf designs a low-shelf biquad with gain in dB and the fixed shelf
// slope. Frequencies at or above a quarter of Nyquist are pre-warped.
func LowShelf(freq, gainDB, sampleRate float64) biquad.Coefficients {
	w0, ok := shelfW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	a := math.Pow(10, gainDB/40)
	alpha := shelfAlpha(sw, a)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high-shelf biquad with gain in dB and the fixed shelf
// slope. Frequencies at or above a quarter of Nyquist are pre-warped.
func HighShelf(freq, gainDB, sampleRate float64) biquad.Coefficients {
	w0, ok := shelfW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	a := math.Pow(10, gainDB/40)
	alpha := shelfAlpha(sw, a)
	beta := 2 * math.Sqrt(a) * alpha

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Allpass designs an RBJ allpass biquad centered at freq (Hz).
func Allpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Identity()
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1 - alpha
	b1 := -2 * cw
	b2 := 1 + alpha
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// shelfAlpha derives the RBJ alpha term from the fixed shelf slope:
// alpha = sin(w0)/2 * sqrt((A + 1/A)*(1/S - 1) + 2).
func shelfAlpha(sinW0, a float64) float64 {
	return sinW0 / 2 * math.Sqrt((a+1/a)*(1/shelfSlope-1)+2)
}

// shelfW0 computes the normalized angular frequency for the shelf designs,
// applying bilinear pre-warping fc' = (Fs/pi)*tan(pi*fc/Fs) once fc reaches
// a quarter of Nyquist. The input and warped frequencies are both kept
// below 0.98*Nyquist.
func shelfW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2

	limit := maxFrequencyFraction * nyquist
	if freq > limit {
		freq = limit
	}

	if freq >= preWarpFraction*nyquist {
		freq = sampleRate / math.Pi * math.Tan(math.Pi*freq/sampleRate)
		if freq > limit {
			freq = limit
		}
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Identity()
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
