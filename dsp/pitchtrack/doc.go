// Package pitchtrack estimates per-frame fundamental frequency of mono
// audio.
//
// The [Detector] implements a probabilistic YIN estimator. Each centered
// analysis frame produces a [tuning.Pitch] (voiced with a frequency or
// unvoiced) and a voicing probability. Silent input never fails: it yields
// an all-unvoiced trajectory with zero probability.
//
// Detection is deterministic for a given signal, sample rate and [Config].
package pitchtrack
