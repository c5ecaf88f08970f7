// Package pipeline turns a video into its auto-tuned version: standardize,
// extract audio, separate stems, process the vocals, remix and remux.
//
// Every step writes one file into a cache directory next to the input
// video and is skipped when that file already exists.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-autotune/internal/config"
	"github.com/cwbudde/algo-autotune/internal/media"
	"github.com/cwbudde/algo-autotune/internal/separation"
)

// EffectsSampleRate is the rate the vocal effects run at.
const EffectsSampleRate = 44100

// Media is the ffmpeg collaborator.
type Media interface {
	StandardizeVideo(ctx context.Context, in, out string, width, height int) error
	ExtractAudio(ctx context.Context, in, out string) error
	Mix(ctx context.Context, first, second, out string, firstVolume, secondVolume float64) error
	MixWithDucking(ctx context.Context, m media.DuckedMix) error
	AddAudioToVideo(ctx context.Context, m media.Mux) error
}

// Separator is the source separation collaborator.
type Separator interface {
	Separate(ctx context.Context, input, outputDir string) (separation.Stems, error)
}

// Pipeline runs the processing steps for one configuration.
type Pipeline struct {
	cfg   *config.Config
	media Media
	sep   Separator
	log   *zap.Logger
}

// New returns a pipeline. A nil logger disables logging.
func New(cfg *config.Config, m Media, sep Separator, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline: nil config")
	}
	if m == nil || sep == nil {
		return nil, errors.New("pipeline: missing collaborator")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, media: m, sep: sep, log: logger}, nil
}

// Paths are the files produced for one input video.
type Paths struct {
	CacheDir     string
	Standardized string
	Audio        string
	Compressed   string
	Corrected    string
	Report       string
	Reverb       string
	Delay        string
	FinalMix     string
	FinalVideo   string
}

// PathsFor derives the cache layout for a video.
func PathsFor(video, outputDir string) Paths {
	dir := filepath.Dir(video)
	ext := filepath.Ext(video)
	stem := strings.TrimSuffix(filepath.Base(video), ext)

	cache := filepath.Join(dir, stem+"_output")
	standardizedStem := stem + "_standardized"
	audio := filepath.Join(cache, standardizedStem+"_audio.wav")

	vocals := separation.StemPaths(cache).Vocals
	compressedStem := strings.TrimSuffix(filepath.Base(vocals), ".wav") + "_compressed"

	return Paths{
		CacheDir:     cache,
		Standardized: filepath.Join(cache, standardizedStem+ext),
		Audio:        audio,
		Compressed:   filepath.Join(cache, compressedStem+".wav"),
		Corrected:    filepath.Join(cache, compressedStem+"_pitch_corrected.wav"),
		Report:       filepath.Join(cache, compressedStem+"_pitch_report.yaml"),
		Reverb:       filepath.Join(cache, compressedStem+"_pitch_corrected_reverb.wav"),
		Delay:        filepath.Join(cache, compressedStem+"_pitch_corrected_reverb_delay.wav"),
		FinalMix:     filepath.Join(cache, standardizedStem+"_audio_final_mix.wav"),
		FinalVideo:   filepath.Join(outputDir, standardizedStem+"_final"+ext),
	}
}

// Run executes all steps and returns the path of the final video.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	paths := PathsFor(p.cfg.VideoFile, p.cfg.OutputDir)

	if err := os.MkdirAll(paths.CacheDir, fs.ModePerm); err != nil {
		return "", fmt.Errorf("pipeline: create cache dir: %w", err)
	}

	err := p.step(ctx, "standardize video", paths.Standardized, func() error {
		return p.media.StandardizeVideo(ctx, p.cfg.VideoFile, paths.Standardized,
			p.cfg.Video.Width, p.cfg.Video.Height)
	})
	if err != nil {
		return "", err
	}

	err = p.step(ctx, "extract audio", paths.Audio, func() error {
		return p.media.ExtractAudio(ctx, paths.Standardized, paths.Audio)
	})
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.log.Info("separating sources", zap.String("path", paths.Audio))
	stems, err := p.sep.Separate(ctx, paths.Audio, paths.CacheDir)
	if err != nil {
		return "", fmt.Errorf("pipeline: separate sources: %w", err)
	}
	p.log.Info("sources separated", zap.String("vocals", stems.Vocals), zap.String("other", stems.Other))

	err = p.step(ctx, "compress vocals", paths.Compressed, func() error {
		return p.compress(stems.Vocals, paths.Compressed)
	})
	if err != nil {
		return "", err
	}

	err = p.step(ctx, "auto-tune", paths.Corrected, func() error {
		return p.autotune(paths.Compressed, paths.Corrected, paths.Report)
	})
	if err != nil {
		return "", err
	}

	err = p.step(ctx, "reverb", paths.Reverb, func() error {
		return p.reverb(paths.Corrected, paths.Reverb)
	})
	if err != nil {
		return "", err
	}

	err = p.step(ctx, "delay", paths.Delay, func() error {
		return p.delay(paths.Reverb, paths.Delay)
	})
	if err != nil {
		return "", err
	}

	err = p.step(ctx, "remix", paths.FinalMix, func() error {
		return p.remix(ctx, paths.Delay, stems.Other, paths.FinalMix)
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(paths.FinalVideo), fs.ModePerm); err != nil {
		return "", fmt.Errorf("pipeline: create output dir: %w", err)
	}

	err = p.step(ctx, "assemble video", paths.FinalVideo, func() error {
		m := media.Mux{
			Video:  paths.Standardized,
			Audio:  paths.FinalMix,
			Output: paths.FinalVideo,
			Fade:   p.cfg.Video.Fade,
		}
		if p.cfg.Logo != "" && exists(p.cfg.Logo) {
			m.Logo = p.cfg.Logo
		}
		return p.media.AddAudioToVideo(ctx, m)
	})
	if err != nil {
		return "", err
	}

	return paths.FinalVideo, nil
}

// step runs fn unless out exists. A failed step removes its partial
// output so the next run retries it.
func (p *Pipeline) step(ctx context.Context, name, out string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := p.log.With(zap.String("step", name), zap.String("path", out))
	if exists(out) {
		log.Info("output exists, skipping")
		return nil
	}

	log.Info("starting")
	start := time.Now()

	if err := fn(); err != nil {
		_ = os.Remove(out)
		log.Error("failed", zap.Error(err))
		return fmt.Errorf("pipeline: %s: %w", name, err)
	}

	log.Info("completed", zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (p *Pipeline) remix(ctx context.Context, vocals, other, out string) error {
	if p.cfg.BackgroundMusicPath != "" {
		return p.media.MixWithDucking(ctx, media.DuckedMix{
			Vocals: vocals,
			Other:  other,
			Music:  p.cfg.BackgroundMusicPath,
			Output: out,
			Levels: p.cfg.DuckingLevels(),
		})
	}
	return p.media.Mix(ctx, vocals, other, out, p.cfg.VocalsVolume, p.cfg.OtherVolume)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
