package pitchtrack

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

const (
	defaultFrameLength      = 2048
	defaultHopLength        = 512
	defaultVoicingThreshold = 0.5
	defaultSilenceThreshold = 1e-4

	minFrameLength = 64
)

// ErrNonFiniteInput is returned by [Detector.Detect] when the signal
// contains NaN or infinite samples.
var ErrNonFiniteInput = errors.New("pitchtrack: non-finite input sample")

// Config describes the analysis grid and the search range of the detector.
// Frame and hop lengths are shared with resynthesis, so trajectories from
// one configuration can only be applied on the same grid.
type Config struct {
	// FrameLength is the analysis window length in samples.
	FrameLength int
	// HopLength is the distance between consecutive frame centers.
	HopLength int
	// MinFrequency and MaxFrequency bound the f0 search range in Hz.
	MinFrequency float64
	MaxFrequency float64
	// VoicingThreshold is the minimum voicing probability of a voiced frame.
	VoicingThreshold float64
	// SilenceThreshold is the minimum frame RMS of a voiced frame.
	SilenceThreshold float64
}

// DefaultConfig returns a configuration searching C2..C7 with 2048-sample
// frames and a 512-sample hop.
func DefaultConfig() Config {
	return Config{
		FrameLength:      defaultFrameLength,
		HopLength:        defaultHopLength,
		MinFrequency:     tuning.MustNoteToHz("C2"),
		MaxFrequency:     tuning.MustNoteToHz("C7"),
		VoicingThreshold: defaultVoicingThreshold,
		SilenceThreshold: defaultSilenceThreshold,
	}
}

// Validate reports whether c is usable at sampleRate.
func (c Config) Validate(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("pitchtrack: sample rate must be positive and finite: %f", sampleRate)
	}

	if c.FrameLength < minFrameLength {
		return fmt.Errorf("pitchtrack: frame length must be >= %d: %d", minFrameLength, c.FrameLength)
	}

	if c.HopLength < 1 || c.HopLength > c.FrameLength {
		return fmt.Errorf("pitchtrack: hop length must be in [1, %d]: %d", c.FrameLength, c.HopLength)
	}

	if !core.IsFinitePositive(c.MinFrequency) || !core.IsFinitePositive(c.MaxFrequency) {
		return fmt.Errorf("pitchtrack: frequency range must be positive and finite: [%f, %f]",
			c.MinFrequency, c.MaxFrequency)
	}

	if c.MinFrequency >= c.MaxFrequency {
		return fmt.Errorf("pitchtrack: min frequency must be < max frequency: %f >= %f",
			c.MinFrequency, c.MaxFrequency)
	}

	if c.MaxFrequency > sampleRate/2 {
		return fmt.Errorf("pitchtrack: max frequency must be <= Nyquist (%f): %f",
			sampleRate/2, c.MaxFrequency)
	}

	if c.VoicingThreshold < 0 || c.VoicingThreshold > 1 || math.IsNaN(c.VoicingThreshold) {
		return fmt.Errorf("pitchtrack: voicing threshold must be in [0, 1]: %f", c.VoicingThreshold)
	}

	if c.SilenceThreshold < 0 || !core.IsFinite(c.SilenceThreshold) {
		return fmt.Errorf("pitchtrack: silence threshold must be >= 0 and finite: %f", c.SilenceThreshold)
	}

	_, maxPeriod := c.periodRange(sampleRate)
	if maxPeriod >= c.FrameLength-c.FrameLength/2 {
		return fmt.Errorf("pitchtrack: frame length %d too short for min frequency %f Hz (period %d samples)",
			c.FrameLength, c.MinFrequency, maxPeriod)
	}

	return nil
}

// periodRange converts the frequency range into lag bounds in samples. The
// lower bound never drops below 2 so every candidate lag has two neighbors.
func (c Config) periodRange(sampleRate float64) (int, int) {
	minPeriod := max(int(math.Floor(sampleRate/c.MaxFrequency)), 2)
	maxPeriod := max(int(math.Ceil(sampleRate/c.MinFrequency)), minPeriod+1)

	return minPeriod, maxPeriod
}

// FrameCount returns the number of centered frames covering n samples.
func FrameCount(n, hop int) int {
	return tuning.FrameCount(n, hop)
}
