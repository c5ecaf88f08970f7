// Package autotune corrects the pitch of a mono vocal signal.
//
// The pipeline detects a per-frame pitch trajectory (package pitchtrack),
// corrects it with one of two methods, and resynthesizes the signal onto the
// corrected trajectory (package pitch):
//
//   - MethodNearestNote rounds every voiced frame to the nearest
//     equal-tempered semitone. No smoothing is applied.
//   - MethodScale snaps every voiced frame to the nearest degree of a
//     [tuning.Scale] and then removes single-frame outliers with a
//     three-frame median filter that never crosses unvoiced frames.
//
// The correction functions are pure and can be used on trajectories from
// any source.
package autotune
