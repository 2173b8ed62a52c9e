package design_test

import (
	"fmt"

	"github.com/mixforge/audiofx/dsp/filter/biquad"
	"github.com/mixforge/audiofx/dsp/filter/design"
)

func ExampleButterworthLowpass() {
	c := design.ButterworthLowpass(1000, 48000)

	// DC gain of a lowpass is unity: H(1) = (B0+B1+B2)/(1+A1+A2).
	dc := (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
	fmt.Printf("%.3f\n", dc)
	// Output: 1.000
}

func ExamplePeak() {
	// Degenerate inputs yield the identity pass-through rather than an
	// unstable filter.
	c := design.Peak(0, 6, 1, 48000)

	fmt.Println(c == biquad.Identity())
	// Output: true
}
