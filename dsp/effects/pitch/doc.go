// Package pitch provides reusable non-I/O pitch resynthesis.
//
// Included processors:
//   - Resynthesizer: TD-PSOLA resynthesis that makes a signal follow a
//     per-frame target pitch trajectory while keeping its timing.
//
// Frames follow the centered grid of package pitchtrack, so trajectories
// produced by a detector with the same [pitchtrack.Config] can be passed
// directly.
package pitch
