// Package tuning provides the pitch vocabulary shared by the auto-tune
// stages: optional per-frame pitches, pitch trajectories, voicing state,
// equal-tempered conversions and musical scales.
//
// Unvoiced frames are modelled explicitly with [Pitch] instead of a NaN
// marker, so arithmetic on a trajectory can never silently absorb a
// missing value:
//
//	p := tuning.Voiced(446.0)
//	s, _ := tuning.ParseScale("C:maj")
//	q := s.Nearest(p) // 440 Hz
//
// Scales follow the "tonic:mode" naming used by common music-analysis
// tools ("C:maj", "F#:min", "D:dor") and also accept spelled-out modes
// ("Bb minor").
package tuning
