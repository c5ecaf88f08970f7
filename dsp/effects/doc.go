// Package effects groups the audio effect kernels used by the vocal pipeline.
//
// Subpackages:
//   - github.com/cwbudde/algo-autotune/dsp/effects/pitch
//   - github.com/cwbudde/algo-autotune/dsp/effects/vocal
//
// Kernels process float64 buffers in place or into caller-provided output
// and perform no file or process I/O.
package effects
