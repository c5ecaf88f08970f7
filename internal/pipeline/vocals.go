package pipeline

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-autotune/dsp/autotune"
	"github.com/cwbudde/algo-autotune/dsp/effects/vocal"
	"github.com/cwbudde/algo-autotune/internal/audiofile"
)

// loadMono reads path as mono audio at rate. A rate of zero keeps the
// file's own rate.
func loadMono(path string, rate int) (*audiofile.Buffer, error) {
	buf, err := audiofile.Load(path)
	if err != nil {
		return nil, err
	}

	mono, err := audiofile.NewBuffer(buf.SampleRate, buf.Mono())
	if err != nil {
		return nil, err
	}
	if rate == 0 || rate == mono.SampleRate {
		return mono, nil
	}
	return mono.Resample(rate)
}

// applyEffect runs one vocal effect stage at [EffectsSampleRate] and
// writes the result as stereo.
func applyEffect(in, out string, build func(sampleRate float64) (vocal.Stage, error)) error {
	buf, err := loadMono(in, EffectsSampleRate)
	if err != nil {
		return err
	}

	stage, err := build(float64(buf.SampleRate))
	if err != nil {
		return err
	}

	samples := buf.Channels[0]
	vocal.NewChain(stage).Process(samples)

	stereo, err := audiofile.NewBuffer(buf.SampleRate, samples, samples)
	if err != nil {
		return err
	}
	return audiofile.Save(out, stereo)
}

func (p *Pipeline) compress(in, out string) error {
	settings := p.cfg.CompressorSettings()
	return applyEffect(in, out, func(sr float64) (vocal.Stage, error) {
		return vocal.CompressionStage(sr, settings)
	})
}

func (p *Pipeline) reverb(in, out string) error {
	settings := p.cfg.ReverbSettings()
	return applyEffect(in, out, func(sr float64) (vocal.Stage, error) {
		return vocal.ReverbStage(sr, settings)
	})
}

func (p *Pipeline) delay(in, out string) error {
	settings := p.cfg.DelaySettings()
	return applyEffect(in, out, func(sr float64) (vocal.Stage, error) {
		return vocal.DelayStage(sr, settings)
	})
}

// autotune pitch-corrects in at its own sample rate and writes mono
// output. With plotting enabled the per-frame report is written too.
func (p *Pipeline) autotune(in, out, reportPath string) error {
	buf, err := loadMono(in, 0)
	if err != nil {
		return err
	}

	cfg, err := p.cfg.Tuner()
	if err != nil {
		return err
	}

	tuner, err := autotune.New(float64(buf.SampleRate), cfg)
	if err != nil {
		return err
	}

	corrected, analysis, err := tuner.ProcessWithAnalysis(buf.Channels[0])
	if err != nil {
		return err
	}

	report := analysis.Report()
	p.log.Info("pitch corrected",
		zap.String("method", report.Method),
		zap.String("scale", report.Scale),
		zap.Int("frames", report.Frames),
		zap.Int("voiced_frames", report.VoicedFrames),
		zap.Float64("mean_correction_cents", report.MeanCorrectionCents))

	if p.cfg.Plot {
		if err := writeReport(reportPath, report); err != nil {
			return err
		}
		p.log.Info("pitch report written", zap.String("path", reportPath))
	}

	result, err := audiofile.NewBuffer(buf.SampleRate, corrected)
	if err != nil {
		return err
	}
	return audiofile.Save(out, result)
}

func writeReport(path string, r autotune.Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode pitch report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pitch report: %w", err)
	}
	return nil
}
