package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrToolOutput is returned when ffprobe output cannot be parsed.
var ErrToolOutput = errors.New("media: unexpected ffprobe output")

const (
	// DefaultMaxLogoWidth is the logo width limit in pixels.
	DefaultMaxLogoWidth = 200

	// MixSampleRate is the sample rate of ducked mixes.
	MixSampleRate = 44100

	scaledLogoName = "scaled_logo"
)

// Tool issues ffmpeg and ffprobe commands through a [Runner].
type Tool struct {
	runner  Runner
	ffmpeg  string
	ffprobe string
}

// Option configures a [Tool].
type Option func(*Tool)

// WithBinaries overrides the ffmpeg and ffprobe executables.
func WithBinaries(ffmpeg, ffprobe string) Option {
	return func(t *Tool) {
		if ffmpeg != "" {
			t.ffmpeg = ffmpeg
		}
		if ffprobe != "" {
			t.ffprobe = ffprobe
		}
	}
}

// New returns a Tool running commands with r.
func New(r Runner, opts ...Option) *Tool {
	t := &Tool{runner: r, ffmpeg: "ffmpeg", ffprobe: "ffprobe"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Duration returns the container duration of path in seconds.
func (t *Tool) Duration(ctx context.Context, path string) (float64, error) {
	out, err := t.runner.Run(ctx, t.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	if err != nil {
		return 0, fmt.Errorf("read duration of %s: %w", path, err)
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: duration %q", ErrToolOutput, strings.TrimSpace(string(out)))
	}
	return d, nil
}

// Dimensions returns the width and height of the first video stream.
func (t *Tool) Dimensions(ctx context.Context, path string) (int, int, error) {
	out, err := t.runner.Run(ctx, t.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path)
	if err != nil {
		return 0, 0, fmt.Errorf("read dimensions of %s: %w", path, err)
	}
	return parseDimensions(string(out))
}

func parseDimensions(s string) (int, int, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	ws, hs, ok := strings.Cut(strings.TrimSpace(line), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: dimensions %q", ErrToolOutput, s)
	}
	w, werr := strconv.Atoi(ws)
	h, herr := strconv.Atoi(strings.TrimRight(hs, "x"))
	if werr != nil || herr != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: dimensions %q", ErrToolOutput, s)
	}
	return w, h, nil
}

// StandardizeVideo scales and center-crops in to width x height, copying
// the audio stream.
func (t *Tool) StandardizeVideo(ctx context.Context, in, out string, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("media: target dimensions must be positive: %dx%d", width, height)
	}

	w, h, err := t.Dimensions(ctx, in)
	if err != nil {
		return err
	}

	_, err = t.runner.Run(ctx, t.ffmpeg,
		"-i", in,
		"-vf", StandardizeFilter(w, h, width, height),
		"-c:a", "copy",
		"-y", out)
	if err != nil {
		return fmt.Errorf("standardize %s: %w", in, err)
	}
	return nil
}

// ExtractAudio writes the audio streams of in to out.
func (t *Tool) ExtractAudio(ctx context.Context, in, out string) error {
	_, err := t.runner.Run(ctx, t.ffmpeg,
		"-i", in,
		"-q:a", "0",
		"-map", "a",
		"-y", out)
	if err != nil {
		return fmt.Errorf("extract audio from %s: %w", in, err)
	}
	return nil
}

// Mix mixes two audio files at the given volumes.
func (t *Tool) Mix(ctx context.Context, first, second, out string, firstVolume, secondVolume float64) error {
	_, err := t.runner.Run(ctx, t.ffmpeg,
		"-i", first,
		"-i", second,
		"-filter_complex", MixFilter(firstVolume, secondVolume),
		"-y", out)
	if err != nil {
		return fmt.Errorf("mix %s and %s: %w", first, second, err)
	}
	return nil
}

// DuckedMix names the inputs and output of [Tool.MixWithDucking].
type DuckedMix struct {
	Vocals string
	Other  string
	Music  string
	Output string
	Levels DuckingLevels
}

// MixWithDucking mixes vocals, other and background music, ducking the
// music under the vocals. The result is stereo at [MixSampleRate].
func (t *Tool) MixWithDucking(ctx context.Context, m DuckedMix) error {
	_, err := t.runner.Run(ctx, t.ffmpeg,
		"-i", m.Vocals,
		"-i", m.Other,
		"-i", m.Music,
		"-filter_complex", DuckingFilter(m.Levels),
		"-ac", "2",
		"-ar", strconv.Itoa(MixSampleRate),
		"-y", m.Output)
	if err != nil {
		return fmt.Errorf("ducked mix into %s: %w", m.Output, err)
	}
	return nil
}

// ScaleLogo resizes a logo image to at most maxWidth pixels wide.
func (t *Tool) ScaleLogo(ctx context.Context, in, out string, maxWidth int) error {
	if maxWidth <= 0 {
		return fmt.Errorf("media: logo width must be positive: %d", maxWidth)
	}
	_, err := t.runner.Run(ctx, t.ffmpeg,
		"-i", in,
		"-vf", LogoScaleFilter(maxWidth),
		"-y", out)
	if err != nil {
		return fmt.Errorf("scale logo %s: %w", in, err)
	}
	return nil
}

// Mux describes the final video assembly.
type Mux struct {
	Video  string
	Audio  string
	Output string
	// Fade is the fade in and fade out length in seconds.
	Fade float64
	// Logo is an optional image overlaid at the bottom right.
	Logo string
}

// AddAudioToVideo replaces the audio of a video, fading picture and sound
// in and out and optionally overlaying a scaled logo.
func (t *Tool) AddAudioToVideo(ctx context.Context, m Mux) error {
	if m.Fade < 0 {
		return fmt.Errorf("media: fade must be >= 0: %f", m.Fade)
	}

	duration, err := t.Duration(ctx, m.Video)
	if err != nil {
		return err
	}

	args := []string{"-i", m.Video, "-i", m.Audio}
	withLogo := m.Logo != ""
	if withLogo {
		scaled := filepath.Join(filepath.Dir(m.Output), scaledLogoName+filepath.Ext(m.Logo))
		if err := t.ScaleLogo(ctx, m.Logo, scaled, DefaultMaxLogoWidth); err != nil {
			return err
		}
		args = append(args, "-i", scaled)
	}

	args = append(args,
		"-filter_complex", FadeFilter(duration, m.Fade, withLogo),
		"-map", "[v]",
		"-map", "[audio]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-y", m.Output)

	if _, err := t.runner.Run(ctx, t.ffmpeg, args...); err != nil {
		return fmt.Errorf("mux %s: %w", m.Output, err)
	}
	return nil
}
