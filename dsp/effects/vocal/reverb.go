package vocal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
	"github.com/cwbudde/algo-autotune/dsp/delay"
)

const (
	reverbInputGain = 0.015

	// Plugin-style parameter scaling: room size maps to comb feedback in
	// [0.7, 0.98], damping to [0, 0.4], wet and dry are boosted.
	reverbRoomScale  = 0.28
	reverbRoomOffset = 0.7
	reverbDampScale  = 0.4
	reverbWetScale   = 3.0
	reverbDryScale   = 2.0

	reverbAllpassFeedback = 0.5

	reverbTuningRate = 44100.0

	defaultReverbRoomSize = 0.3
	defaultReverbDamping  = 0.3
	defaultReverbWetLevel = 0.3
	defaultReverbDryLevel = 0.7
)

// Comb and allpass lengths in samples at 44.1 kHz.
var (
	reverbCombTunings    = [...]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	reverbAllpassTunings = [...]int{556, 441, 341, 225}
)

// ReverbSettings holds reverb parameters, each in [0, 1].
type ReverbSettings struct {
	RoomSize float64
	Damping  float64
	WetLevel float64
	DryLevel float64
}

// DefaultReverbSettings returns room 0.3, damping 0.3, wet 0.3, dry 0.7.
func DefaultReverbSettings() ReverbSettings {
	return ReverbSettings{
		RoomSize: defaultReverbRoomSize,
		Damping:  defaultReverbDamping,
		WetLevel: defaultReverbWetLevel,
		DryLevel: defaultReverbDryLevel,
	}
}

func (s ReverbSettings) validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"room size", s.RoomSize},
		{"damping", s.Damping},
		{"wet level", s.WetLevel},
		{"dry level", s.DryLevel},
	} {
		if p.v < 0 || p.v > 1 || math.IsNaN(p.v) {
			return fmt.Errorf("reverb %s must be in [0, 1]: %f", p.name, p.v)
		}
	}
	return nil
}

// Reverb is a mono Schroeder/Freeverb-style reverb: eight damped feedback
// combs in parallel followed by four allpass diffusers.
type Reverb struct {
	sampleRate float64
	settings   ReverbSettings

	feedback float64
	damp     float64
	wet      float64
	dry      float64

	combs   []reverbComb
	allpass []reverbAllpass
}

type reverbComb struct {
	line        *delay.Line
	filterStore float64
}

func (c *reverbComb) process(input, feedback, damp float64) float64 {
	out := c.line.Oldest()
	c.filterStore = core.FlushDenormals(out*(1-damp) + c.filterStore*damp)
	c.line.Write(input + c.filterStore*feedback)
	return out
}

type reverbAllpass struct {
	line *delay.Line
}

func (a *reverbAllpass) process(input float64) float64 {
	buffered := a.line.Feedback(input, reverbAllpassFeedback)
	return buffered - input
}

// NewReverb creates a reverb for sampleRate. Delay lengths scale with the
// sample rate relative to 44.1 kHz.
func NewReverb(sampleRate float64, s ReverbSettings) (*Reverb, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("reverb sample rate must be positive and finite: %f", sampleRate)
	}

	r := &Reverb{sampleRate: sampleRate}
	scale := sampleRate / reverbTuningRate

	for _, n := range reverbCombTunings {
		line, err := delay.New(max(int(math.Round(float64(n)*scale)), 1))
		if err != nil {
			return nil, fmt.Errorf("reverb: %w", err)
		}
		r.combs = append(r.combs, reverbComb{line: line})
	}

	for _, n := range reverbAllpassTunings {
		line, err := delay.New(max(int(math.Round(float64(n)*scale)), 1))
		if err != nil {
			return nil, fmt.Errorf("reverb: %w", err)
		}
		r.allpass = append(r.allpass, reverbAllpass{line: line})
	}

	if err := r.SetSettings(s); err != nil {
		return nil, err
	}

	return r, nil
}

// SetSettings replaces all parameters.
func (r *Reverb) SetSettings(s ReverbSettings) error {
	if err := s.validate(); err != nil {
		return err
	}
	r.settings = s
	r.feedback = s.RoomSize*reverbRoomScale + reverbRoomOffset
	r.damp = s.Damping * reverbDampScale
	r.wet = s.WetLevel * reverbWetScale
	r.dry = s.DryLevel * reverbDryScale
	return nil
}

// Settings returns the current parameters.
func (r *Reverb) Settings() ReverbSettings { return r.settings }

// SampleRate returns the sample rate in Hz.
func (r *Reverb) SampleRate() float64 { return r.sampleRate }

// ProcessSample processes one sample.
func (r *Reverb) ProcessSample(input float64) float64 {
	x := input * reverbInputGain

	var acc float64
	for i := range r.combs {
		acc += r.combs[i].process(x, r.feedback, r.damp)
	}
	for i := range r.allpass {
		acc = r.allpass[i].process(acc)
	}

	return acc*r.wet + input*r.dry
}

// ProcessInPlace applies reverb to buf in place.
func (r *Reverb) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = r.ProcessSample(buf[i])
	}
}

// Reset clears all delay and filter state.
func (r *Reverb) Reset() {
	for i := range r.combs {
		r.combs[i].line.Reset()
		r.combs[i].filterStore = 0
	}
	for i := range r.allpass {
		r.allpass[i].line.Reset()
	}
}
