// Package biquad provides the second-order IIR filter runtime used as the
// building block for every filter-based effect in this module.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Multiple sections can be
// cascaded via [Chain] for higher-order responses.
//
// This package is runtime only; coefficient design (shelves, peaking,
// Butterworth) lives in dsp/filter/design. Sections do not validate their
// coefficients; stability is the designer's contract.
package biquad
