package vocal

import (
	"fmt"

	"github.com/cwbudde/algo-autotune/dsp/core"
)

// Processor is a mono in-place effect.
type Processor interface {
	ProcessInPlace(buf []float64)
	Reset()
}

// Stage is one processor in a [Chain] together with its normalization
// policy.
type Stage struct {
	Name      string
	Processor Processor
	// NormalizeInput peak-normalizes the buffer before the stage.
	NormalizeInput bool
	// NormalizeOutput peak-normalizes the buffer after the stage.
	NormalizeOutput bool
}

// Chain runs stages in order over a mono buffer.
type Chain struct {
	stages []Stage
	peak   float64
}

// NewChain returns a chain over stages. Normalization targets full scale.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages, peak: 1}
}

// SetNormalizePeak sets the peak level used by normalizing stages.
func (c *Chain) SetNormalizePeak(peak float64) error {
	if !core.IsFinitePositive(peak) {
		return fmt.Errorf("normalize peak must be positive and finite: %f", peak)
	}
	c.peak = peak
	return nil
}

// Stages returns the stage names in order.
func (c *Chain) Stages() []string {
	out := make([]string, len(c.stages))
	for i, s := range c.stages {
		out[i] = s.Name
	}
	return out
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.stages) }

// Process runs every stage over buf in place.
func (c *Chain) Process(buf []float64) {
	for _, s := range c.stages {
		if s.NormalizeInput {
			PeakNormalize(buf, c.peak)
		}
		s.Processor.ProcessInPlace(buf)
		if s.NormalizeOutput {
			PeakNormalize(buf, c.peak)
		}
	}
}

// Reset resets every stage.
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.Processor.Reset()
	}
}

// Stage names.
const (
	EffectCompression = "compression"
	EffectReverb      = "reverb"
	EffectDelay       = "delay"
)

// CompressionStage returns a compressor stage that normalizes its output.
func CompressionStage(sampleRate float64, s CompressorSettings) (Stage, error) {
	c, err := NewCompressor(sampleRate, s)
	if err != nil {
		return Stage{}, err
	}
	return Stage{Name: EffectCompression, Processor: c, NormalizeOutput: true}, nil
}

// ReverbStage returns a reverb stage normalizing input and output.
func ReverbStage(sampleRate float64, s ReverbSettings) (Stage, error) {
	r, err := NewReverb(sampleRate, s)
	if err != nil {
		return Stage{}, err
	}
	return Stage{Name: EffectReverb, Processor: r, NormalizeInput: true, NormalizeOutput: true}, nil
}

// DelayStage returns a delay stage normalizing input and output.
func DelayStage(sampleRate float64, s DelaySettings) (Stage, error) {
	d, err := NewDelay(sampleRate, s)
	if err != nil {
		return Stage{}, err
	}
	return Stage{Name: EffectDelay, Processor: d, NormalizeInput: true, NormalizeOutput: true}, nil
}
