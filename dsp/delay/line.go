// Package delay provides a fixed-capacity circular delay line.
//
// A Line is allocated once at construction and never resized; the write
// cursor wraps monotonically and read positions are derived as
// (write - offset) mod capacity. This is the storage primitive behind the
// delay, chorus and reverb pre-delay units.
package delay

import (
	"fmt"
	"math"

	"github.com/mixforge/audiofx/dsp/interp"
)

// Line is a circular delay line of fixed capacity.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line with the given capacity in samples.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay line capacity must be > 0: %d", capacity)
	}

	return &Line{buffer: make([]float64, capacity)}, nil
}

// Len returns the line capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write stores one sample at the current cursor and advances it.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Put stores one sample at the current cursor without advancing it.
// Use together with Advance when several taps must observe the same
// cursor position within one sample period.
func (d *Line) Put(sample float64) {
	d.buffer[d.writePos] = sample
}

// Advance moves the write cursor forward by one sample.
func (d *Line) Advance() {
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample delayed by the given integer offset.
// Offset 0 reads the slot the cursor is about to overwrite next.
func (d *Line) Read(offset int) float64 {
	size := len(d.buffer)

	readPos := (d.writePos - offset + size) % size

	return d.buffer[readPos]
}

// ReadLinear reads a fractional delay using linear interpolation between
// the two nearest integer taps.
func (d *Line) ReadLinear(offset float64) float64 {
	if offset < 0 {
		offset = 0
	}

	maxOffset := float64(len(d.buffer) - 2)
	if offset > maxOffset {
		offset = maxOffset
	}

	p := int(math.Floor(offset))
	t := offset - float64(p)

	return interp.Linear(t, d.Read(p), d.Read(p+1))
}

// ReadHermite reads a fractional delay using cubic 4-point interpolation.
func (d *Line) ReadHermite(offset float64) float64 {
	if offset < 1 {
		offset = 1
	}

	maxOffset := float64(len(d.buffer) - 3)
	if offset > maxOffset {
		offset = maxOffset
	}

	p := int(math.Floor(offset))
	t := offset - float64(p)

	xm1 := d.Read(p - 1)
	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Reset clears the buffer and rewinds the cursor.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}
