// Package design computes biquad coefficients for the filter responses used
// by the effect units: RBJ-cookbook low/high shelves, peaking EQ, and
// Butterworth-style low/high pass sections.
//
// Calculators assume parameters already clamped to their declared ranges by
// the caller; they do not re-validate gain, Q or frequency beyond guarding
// the degenerate cases that would produce NaN coefficients. Degenerate
// inputs yield the identity coefficient set rather than an error.
package design
