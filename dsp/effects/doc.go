// Package effects provides the real-time audio effect units: parametric EQ,
// waveshaping distortion, feedback delay, chorus, compressor, Freeverb-style
// reverb, the BassPurr and GrowlingBass harmonic generators, and a level
// meter.
//
// Every unit follows the same per-block contract: the host calls Process
// once per fixed-size block with input and output channel buffers of equal
// length; the call allocates nothing, never blocks, never logs, and always
// completes the block. Parameters are set from a control thread between
// blocks (k-rate); derived values such as filter coefficients are recomputed
// at block start only when a dependent parameter changed since the previous
// block.
//
// All state is allocated once at construction for a fixed sample rate and
// channel count. A bypassed unit copies its input to its output exactly and
// leaves internal state untouched.
package effects
