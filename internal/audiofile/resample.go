package audiofile

import (
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
	"gonum.org/v1/gonum/floats"
)

// Resample returns a copy of b converted to rate. The output length is the
// input duration at the new rate, rounded to the nearest sample, and content
// stays time-aligned with the input.
func (b *Buffer) Resample(rate int) (*Buffer, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("audiofile: target sample rate must be > 0: %d", rate)
	}
	if rate == b.SampleRate {
		out := make([][]float64, len(b.Channels))
		for c, ch := range b.Channels {
			out[c] = append([]float64(nil), ch...)
		}
		return &Buffer{SampleRate: rate, Channels: out}, nil
	}

	conv := converter{in: b.SampleRate, out: rate, pad: max(4096, b.SampleRate/5)}
	shift, err := conv.shift()
	if err != nil {
		return nil, err
	}
	want := int(math.Round(float64(b.Len()) * conv.ratio()))
	start := int(math.Round(float64(conv.pad)*conv.ratio())) + shift

	out := make([][]float64, len(b.Channels))
	for c, ch := range b.Channels {
		res, err := conv.run(ch)
		if err != nil {
			return nil, fmt.Errorf("audiofile: resample channel %d: %w", c, err)
		}
		out[c] = segment(res, start, want)
	}

	return &Buffer{SampleRate: rate, Channels: out}, nil
}

// converter runs one channel through the resampler with pad zeros on both
// sides, so the filter has settled before the signal starts and the tail is
// flushed out after it ends.
type converter struct {
	in, out int
	pad     int
}

func (c converter) ratio() float64 {
	return float64(c.out) / float64(c.in)
}

func (c converter) run(x []float64) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(c.in),
		OutputRate: float64(c.out),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audiofile: create resampler: %w", err)
	}

	padded := make([]float64, len(x)+2*c.pad)
	copy(padded[c.pad:], x)

	res, err := r.Process(padded)
	if err != nil {
		return nil, err
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, err
	}
	return append(res, tail...), nil
}

// shift reports how many output samples the resampler places content after
// its ideal position. It is negative when the resampler trims more than its
// own delay.
func (c converter) shift() (int, error) {
	impulse := make([]float64, c.pad)
	impulse[c.pad/2] = 1
	res, err := c.run(impulse)
	if err != nil {
		return 0, fmt.Errorf("audiofile: measure resampler delay: %w", err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	ideal := int(math.Round(float64(c.pad+c.pad/2) * c.ratio()))
	return floats.MaxIdx(res) - ideal, nil
}

// segment returns x[start:start+n], zero-filling whatever lies outside x.
func segment(x []float64, start, n int) []float64 {
	out := make([]float64, n)
	lo := max(start, 0)
	hi := min(start+n, len(x))
	if lo < hi {
		copy(out[lo-start:], x[lo:hi])
	}
	return out
}
