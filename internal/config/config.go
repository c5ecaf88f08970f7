// Package config loads the pipeline configuration file. JSON and YAML are
// both accepted; keys that are absent keep their defaults.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/algo-autotune/dsp/autotune"
	"github.com/cwbudde/algo-autotune/dsp/effects/vocal"
	"github.com/cwbudde/algo-autotune/dsp/pitchtrack"
	"github.com/cwbudde/algo-autotune/internal/media"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

const (
	// DefaultFile is the configuration file read when none is given.
	DefaultFile = "config.json"

	defaultOutputDir = "output"
	defaultLogo      = "logo.jpg"
	defaultMethod    = "closest"
	defaultScale     = "C:maj"
	defaultWidth     = 720
	defaultHeight    = 1280
	defaultFade      = 3.0

	defaultVocalsVolume     = 1.0
	defaultOtherVolume      = 0.9
	defaultMusicVolume      = 0.8
	defaultDuckingRatio     = 2.5
	defaultDuckingThreshold = 0.015
)

// Config is the pipeline configuration.
type Config struct {
	VideoFile string `yaml:"video_file" json:"video_file"`
	// OutputDir receives the final video.
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// Logo is overlaid on the final video when the file exists.
	Logo string `yaml:"logo" json:"logo"`
	// Plot writes a per-frame pitch report next to the corrected vocals.
	Plot bool `yaml:"plot" json:"plot"`

	CorrectionMethod string    `yaml:"correction_method" json:"correction_method"`
	Scale            string    `yaml:"scale" json:"scale"`
	Detection        Detection `yaml:"detection" json:"detection"`

	BackgroundMusicPath string  `yaml:"background_music_path" json:"background_music_path"`
	VocalsVolume        float64 `yaml:"vocals_volume" json:"vocals_volume"`
	OtherVolume         float64 `yaml:"other_volume" json:"other_volume"`
	MusicVolume         float64 `yaml:"music_volume" json:"music_volume"`
	DuckingRatio        float64 `yaml:"ducking_ratio" json:"ducking_ratio"`
	DuckingThreshold    float64 `yaml:"ducking_threshold" json:"ducking_threshold"`

	Compression Compression `yaml:"compression" json:"compression"`
	Reverb      Reverb      `yaml:"reverb" json:"reverb"`
	Delay       Delay       `yaml:"delay" json:"delay"`

	Video Video `yaml:"video" json:"video"`
}

// Detection overrides the pitch analysis grid and search range.
type Detection struct {
	FrameLength      int     `yaml:"frame_length" json:"frame_length"`
	HopLength        int     `yaml:"hop_length" json:"hop_length"`
	MinFrequency     float64 `yaml:"min_frequency" json:"min_frequency"`
	MaxFrequency     float64 `yaml:"max_frequency" json:"max_frequency"`
	VoicingThreshold float64 `yaml:"voicing_threshold" json:"voicing_threshold"`
	SilenceThreshold float64 `yaml:"silence_threshold" json:"silence_threshold"`
}

// Compression holds the vocal compressor parameters.
type Compression struct {
	ThresholdDB float64 `yaml:"threshold_db" json:"threshold_db"`
	Ratio       float64 `yaml:"ratio" json:"ratio"`
	AttackMs    float64 `yaml:"attack_ms" json:"attack_ms"`
	ReleaseMs   float64 `yaml:"release_ms" json:"release_ms"`
}

// Reverb holds the vocal reverb parameters.
type Reverb struct {
	RoomSize float64 `yaml:"room_size" json:"room_size"`
	Damping  float64 `yaml:"damping" json:"damping"`
	WetLevel float64 `yaml:"wet_level" json:"wet_level"`
	DryLevel float64 `yaml:"dry_level" json:"dry_level"`
}

// Delay holds the vocal delay parameters.
type Delay struct {
	DelayTime float64 `yaml:"delay_time" json:"delay_time"`
	Feedback  float64 `yaml:"feedback" json:"feedback"`
	WetLevel  float64 `yaml:"wet_level" json:"wet_level"`
}

// Video holds the output geometry and transitions.
type Video struct {
	Width  int     `yaml:"width" json:"width"`
	Height int     `yaml:"height" json:"height"`
	Fade   float64 `yaml:"fade" json:"fade"`
}

// Default returns the configuration used for absent keys.
func Default() *Config {
	det := pitchtrack.DefaultConfig()
	comp := vocal.DefaultCompressorSettings()
	rev := vocal.DefaultReverbSettings()
	del := vocal.DefaultDelaySettings()

	return &Config{
		OutputDir:        defaultOutputDir,
		Logo:             defaultLogo,
		CorrectionMethod: defaultMethod,
		Scale:            defaultScale,
		Detection: Detection{
			FrameLength:      det.FrameLength,
			HopLength:        det.HopLength,
			MinFrequency:     det.MinFrequency,
			MaxFrequency:     det.MaxFrequency,
			VoicingThreshold: det.VoicingThreshold,
			SilenceThreshold: det.SilenceThreshold,
		},
		VocalsVolume:     defaultVocalsVolume,
		OtherVolume:      defaultOtherVolume,
		MusicVolume:      defaultMusicVolume,
		DuckingRatio:     defaultDuckingRatio,
		DuckingThreshold: defaultDuckingThreshold,
		Compression: Compression{
			ThresholdDB: comp.ThresholdDB,
			Ratio:       comp.Ratio,
			AttackMs:    comp.AttackMs,
			ReleaseMs:   comp.ReleaseMs,
		},
		Reverb: Reverb{
			RoomSize: rev.RoomSize,
			Damping:  rev.Damping,
			WetLevel: rev.WetLevel,
			DryLevel: rev.DryLevel,
		},
		Delay: Delay{
			DelayTime: del.Seconds,
			Feedback:  del.Feedback,
			WetLevel:  del.Mix,
		},
		Video: Video{
			Width:  defaultWidth,
			Height: defaultHeight,
			Fade:   defaultFade,
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a JSON or YAML document over [Default] and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every section. Effect and tuner parameters are checked by
// building the corresponding processors.
func (c *Config) Validate() error {
	if c.VideoFile == "" {
		return fmt.Errorf("%w: video_file is required", ErrInvalid)
	}

	// Any rate works for parameter checks.
	const validateRate = 44100

	tc, err := c.Tuner()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := autotune.New(validateRate, tc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	for name, v := range map[string]float64{
		"vocals_volume": c.VocalsVolume,
		"other_volume":  c.OtherVolume,
		"music_volume":  c.MusicVolume,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be >= 0 and finite: %f", ErrInvalid, name, v)
		}
	}

	if c.DuckingRatio < 1 || c.DuckingRatio > 20 || math.IsNaN(c.DuckingRatio) {
		return fmt.Errorf("%w: ducking_ratio must be in [1, 20]: %f", ErrInvalid, c.DuckingRatio)
	}
	if c.DuckingThreshold <= 0 || c.DuckingThreshold > 1 || math.IsNaN(c.DuckingThreshold) {
		return fmt.Errorf("%w: ducking_threshold must be in (0, 1]: %f", ErrInvalid, c.DuckingThreshold)
	}

	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("%w: video dimensions must be positive: %dx%d", ErrInvalid, c.Video.Width, c.Video.Height)
	}
	if c.Video.Fade < 0 || math.IsNaN(c.Video.Fade) || math.IsInf(c.Video.Fade, 0) {
		return fmt.Errorf("%w: video fade must be >= 0: %f", ErrInvalid, c.Video.Fade)
	}

	if _, err := vocal.NewCompressor(validateRate, c.CompressorSettings()); err != nil {
		return fmt.Errorf("%w: compression: %w", ErrInvalid, err)
	}
	if _, err := vocal.NewReverb(validateRate, c.ReverbSettings()); err != nil {
		return fmt.Errorf("%w: reverb: %w", ErrInvalid, err)
	}
	if _, err := vocal.NewDelay(validateRate, c.DelaySettings()); err != nil {
		return fmt.Errorf("%w: delay: %w", ErrInvalid, err)
	}

	return nil
}

// Tuner returns the auto-tune configuration.
func (c *Config) Tuner() (autotune.Config, error) {
	method, err := autotune.ParseMethod(c.CorrectionMethod)
	if err != nil {
		return autotune.Config{}, err
	}

	scale := c.Scale
	if scale == "" {
		scale = defaultScale
	}

	return autotune.Config{
		Detection: pitchtrack.Config{
			FrameLength:      c.Detection.FrameLength,
			HopLength:        c.Detection.HopLength,
			MinFrequency:     c.Detection.MinFrequency,
			MaxFrequency:     c.Detection.MaxFrequency,
			VoicingThreshold: c.Detection.VoicingThreshold,
			SilenceThreshold: c.Detection.SilenceThreshold,
		},
		Method: method,
		Scale:  scale,
	}, nil
}

// CompressorSettings returns the compressor parameters.
func (c *Config) CompressorSettings() vocal.CompressorSettings {
	return vocal.CompressorSettings{
		ThresholdDB: c.Compression.ThresholdDB,
		Ratio:       c.Compression.Ratio,
		AttackMs:    c.Compression.AttackMs,
		ReleaseMs:   c.Compression.ReleaseMs,
	}
}

// ReverbSettings returns the reverb parameters.
func (c *Config) ReverbSettings() vocal.ReverbSettings {
	return vocal.ReverbSettings{
		RoomSize: c.Reverb.RoomSize,
		Damping:  c.Reverb.Damping,
		WetLevel: c.Reverb.WetLevel,
		DryLevel: c.Reverb.DryLevel,
	}
}

// DelaySettings returns the delay parameters.
func (c *Config) DelaySettings() vocal.DelaySettings {
	return vocal.DelaySettings{
		Seconds:  c.Delay.DelayTime,
		Feedback: c.Delay.Feedback,
		Mix:      c.Delay.WetLevel,
	}
}

// DuckingLevels returns the mix volumes and sidechain settings.
func (c *Config) DuckingLevels() media.DuckingLevels {
	return media.DuckingLevels{
		Vocals:    c.VocalsVolume,
		Other:     c.OtherVolume,
		Music:     c.MusicVolume,
		Ratio:     c.DuckingRatio,
		Threshold: c.DuckingThreshold,
	}
}
