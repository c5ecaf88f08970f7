// Package audiofile reads and writes PCM WAV files as float64 sample
// buffers and converts their channel layout and sample rate.
package audiofile

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidFile is returned when a file is not a readable PCM WAV file.
var ErrInvalidFile = errors.New("audiofile: invalid wav file")

const saveBitDepth = 16

// Buffer is deinterleaved audio with samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   [][]float64
}

// NewBuffer returns a buffer over the given channels. All channels must
// have the same length.
func NewBuffer(sampleRate int, channels ...[]float64) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audiofile: sample rate must be > 0: %d", sampleRate)
	}
	if len(channels) == 0 {
		return nil, errors.New("audiofile: no channels")
	}
	for i, ch := range channels[1:] {
		if len(ch) != len(channels[0]) {
			return nil, fmt.Errorf("audiofile: channel %d has %d samples, want %d",
				i+1, len(ch), len(channels[0]))
		}
	}
	return &Buffer{SampleRate: sampleRate, Channels: channels}, nil
}

// Len returns the number of sample frames.
func (b *Buffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int { return len(b.Channels) }

// Duration returns the length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Len()) / float64(b.SampleRate)
}

// Mono returns the average of all channels.
func (b *Buffer) Mono() []float64 {
	out := make([]float64, b.Len())
	if len(b.Channels) == 0 {
		return out
	}
	if len(b.Channels) == 1 {
		copy(out, b.Channels[0])
		return out
	}
	for _, ch := range b.Channels {
		for i, v := range ch {
			out[i] += v
		}
	}
	scale := 1 / float64(len(b.Channels))
	for i := range out {
		out[i] *= scale
	}
	return out
}

// Load decodes a PCM WAV file.
func Load(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audiofile: decode %s: %w", path, err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels <= 0 || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %s: missing format", ErrInvalidFile, path)
	}

	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %s: unsupported bit depth %d", ErrInvalidFile, path, bitDepth)
	}

	return fromInterleaved(pcm.Data, pcm.Format.NumChannels, pcm.Format.SampleRate, bitDepth), nil
}

// Save writes b as a 16-bit PCM WAV file. Samples outside [-1, 1] are
// clipped.
func Save(path string, b *Buffer) error {
	if b == nil || len(b.Channels) == 0 {
		return errors.New("audiofile: empty buffer")
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("audiofile: sample rate must be > 0: %d", b.SampleRate)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, b.SampleRate, saveBitDepth, len(b.Channels), 1)
	pcm := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: len(b.Channels),
			SampleRate:  b.SampleRate,
		},
		Data:           b.interleaved(saveBitDepth),
		SourceBitDepth: saveBitDepth,
	}

	if err := enc.Write(pcm); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: finalize %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("audiofile: close %s: %w", path, err)
	}
	return nil
}

func fromInterleaved(data []int, channels, sampleRate, bitDepth int) *Buffer {
	frames := len(data) / channels
	scale := 1 / math.Exp2(float64(bitDepth-1))

	out := make([][]float64, channels)
	for c := range out {
		out[c] = make([]float64, frames)
	}
	for i := range frames {
		for c := range channels {
			out[c][i] = float64(data[i*channels+c]) * scale
		}
	}
	return &Buffer{SampleRate: sampleRate, Channels: out}
}

func (b *Buffer) interleaved(bitDepth int) []int {
	full := math.Exp2(float64(bitDepth - 1))
	maxInt := full - 1
	channels := len(b.Channels)

	out := make([]int, b.Len()*channels)
	for c, ch := range b.Channels {
		for i, v := range ch {
			s := math.Round(v * full)
			switch {
			case math.IsNaN(s):
				s = 0
			case s > maxInt:
				s = maxInt
			case s < -full:
				s = -full
			}
			out[i*channels+c] = int(s)
		}
	}
	return out
}
