// Package interp provides interpolation primitives used by delay-based DSP
// blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear]:   2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite
//
// Fractional delay reads in [delay.Line] build on these.
package interp
