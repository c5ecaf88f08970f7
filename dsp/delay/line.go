package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
)

// Line is a circular delay line holding the most recent Len samples.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// NewSeconds returns a delay line long enough for seconds of audio at
// sampleRate, rounded to the nearest sample and at least one sample.
func NewSeconds(seconds, sampleRate float64) (*Line, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("delay sample rate must be positive and finite: %f", sampleRate)
	}
	if !core.IsFinitePositive(seconds) {
		return nil, fmt.Errorf("delay time must be positive and finite: %f", seconds)
	}
	return New(max(int(math.Round(seconds*sampleRate)), 1))
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write pushes one sample, overwriting the oldest.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago. Delay 1 is the most
// recent sample; delays are clamped to [1, Len].
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	delay = min(max(delay, 1), size)
	readPos := d.writePos - delay
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// Oldest returns the sample about to be overwritten, delayed by Len.
func (d *Line) Oldest() float64 {
	return d.buffer[d.writePos]
}

// Feedback reads the oldest sample, writes input plus feedback times that
// sample, and returns the oldest sample. This is the recirculating step of
// a feedback delay or comb filter.
func (d *Line) Feedback(input, feedback float64) float64 {
	out := d.buffer[d.writePos]
	d.Write(input + out*feedback)
	return out
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
