// Package vocal provides the mono effect kernels applied to an isolated
// vocal stem around pitch correction.
//
// Included processors:
//   - Compressor: Feed-forward peak compressor with optional soft knee.
//   - Reverb: Freeverb-style comb/allpass reverb with room and damping
//     controls scaled like common plugin reverbs.
//   - Delay: Feedback delay with dry/wet mix.
//   - Chain: Ordered stages with optional peak normalization before and
//     after each stage.
//
// All processors are mono and single-threaded. Build with the fastmath tag
// to use approximate log/exp in the compressor gain computer.
package vocal
