package vocal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
	"github.com/cwbudde/algo-autotune/dsp/delay"
)

const (
	defaultDelaySeconds  = 0.5
	defaultDelayFeedback = 0.5
	defaultDelayMix      = 0.2

	minDelaySeconds  = 0.001
	maxDelaySeconds  = 10.0
	maxDelayFeedback = 0.99
)

// DelaySettings holds feedback delay parameters.
type DelaySettings struct {
	// Seconds is the delay time.
	Seconds float64
	// Feedback is the recirculation gain in [0, 0.99].
	Feedback float64
	// Mix is the wet proportion in [0, 1].
	Mix float64
}

// DefaultDelaySettings returns a 0.5 s delay with 0.5 feedback and 0.2 mix.
func DefaultDelaySettings() DelaySettings {
	return DelaySettings{
		Seconds:  defaultDelaySeconds,
		Feedback: defaultDelayFeedback,
		Mix:      defaultDelayMix,
	}
}

// Delay is a feedback delay with dry/wet mix.
type Delay struct {
	sampleRate float64
	settings   DelaySettings
	line       *delay.Line
}

// NewDelay creates a delay for sampleRate configured from s.
func NewDelay(sampleRate float64, s DelaySettings) (*Delay, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("delay sample rate must be positive and finite: %f", sampleRate)
	}

	if s.Seconds < minDelaySeconds || s.Seconds > maxDelaySeconds || math.IsNaN(s.Seconds) {
		return nil, fmt.Errorf("delay time must be in [%f, %f]: %f", minDelaySeconds, maxDelaySeconds, s.Seconds)
	}

	if s.Feedback < 0 || s.Feedback > maxDelayFeedback || math.IsNaN(s.Feedback) {
		return nil, fmt.Errorf("delay feedback must be in [0, %f]: %f", maxDelayFeedback, s.Feedback)
	}

	if s.Mix < 0 || s.Mix > 1 || math.IsNaN(s.Mix) {
		return nil, fmt.Errorf("delay mix must be in [0, 1]: %f", s.Mix)
	}

	line, err := delay.NewSeconds(s.Seconds, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}

	return &Delay{sampleRate: sampleRate, settings: s, line: line}, nil
}

// Settings returns the delay parameters.
func (d *Delay) Settings() DelaySettings { return d.settings }

// SampleRate returns the sample rate in Hz.
func (d *Delay) SampleRate() float64 { return d.sampleRate }

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(input float64) float64 {
	delayed := d.line.Feedback(input, d.settings.Feedback)
	return input*(1-d.settings.Mix) + delayed*d.settings.Mix
}

// ProcessInPlace applies the delay to buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// Reset clears the delay line.
func (d *Delay) Reset() {
	d.line.Reset()
}
