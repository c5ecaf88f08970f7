package tuning

import "math"

// Trajectory is a per-frame pitch sequence, indexed like the analysis
// frames it was measured on.
type Trajectory []Pitch

// FromHz builds a trajectory from raw frequencies. NaN, infinite and
// non-positive entries become [Unvoiced].
func FromHz(hz []float64) Trajectory {
	t := make(Trajectory, len(hz))
	for i, f := range hz {
		t[i] = Voiced(f)
	}
	return t
}

// Hz returns the frequencies of t with unvoiced frames replaced by fill.
func (t Trajectory) Hz(fill float64) []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		if hz, ok := p.Hz(); ok {
			out[i] = hz
		} else {
			out[i] = fill
		}
	}
	return out
}

// Clone returns a copy of t.
func (t Trajectory) Clone() Trajectory {
	if t == nil {
		return nil
	}
	out := make(Trajectory, len(t))
	copy(out, t)
	return out
}

// VoicedCount returns the number of voiced frames.
func (t Trajectory) VoicedCount() int {
	n := 0
	for _, p := range t {
		if p.voiced {
			n++
		}
	}
	return n
}

// FrameVoicing is the voicing decision for one frame.
type FrameVoicing struct {
	Voiced      bool
	Probability float64
}

// Voicing holds one [FrameVoicing] per analysis frame.
type Voicing []FrameVoicing

// Probabilities returns the voicing probabilities of v.
func (v Voicing) Probabilities() []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = f.Probability
	}
	return out
}

// FrameCount returns the number of centered analysis frames covering n
// samples at the given hop. Frame i is centered on sample i*hop.
func FrameCount(n, hop int) int {
	if n <= 0 || hop <= 0 {
		return 0
	}
	return 1 + n/hop
}

// FrameTimes returns the center time in seconds of each of count frames.
func FrameTimes(count, hop int, sampleRate float64) []float64 {
	out := make([]float64, count)
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return out
	}
	for i := range out {
		out[i] = float64(i*hop) / sampleRate
	}
	return out
}
