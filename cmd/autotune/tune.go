package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-autotune/dsp/autotune"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
	"github.com/cwbudde/algo-autotune/internal/audiofile"
)

type tuneOptions struct {
	method string
	scale  string
	report string
	fmin   string
	fmax   string
	frame  int
	hop    int
}

func newTuneCmd(global *globalOptions) *cobra.Command {
	defaults := autotune.DefaultConfig()
	opts := &tuneOptions{
		method: defaults.Method.String(),
		scale:  defaults.Scale,
		fmin:   "C2",
		fmax:   "C7",
		frame:  defaults.Detection.FrameLength,
		hop:    defaults.Detection.HopLength,
	}

	cmd := &cobra.Command{
		Use:   "tune [flags] in.wav out.wav",
		Short: "Pitch-correct a WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := global.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return runTune(opts, args[0], args[1], logger)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.method, "method", "m", opts.method, "correction method (closest, scale)")
	f.StringVarP(&opts.scale, "scale", "s", opts.scale, `target scale, e.g. "C:maj" or "F# minor"`)
	f.StringVar(&opts.report, "report", "", "write a per-frame pitch report (YAML) to this file")
	f.StringVar(&opts.fmin, "fmin", opts.fmin, "lowest detectable note")
	f.StringVar(&opts.fmax, "fmax", opts.fmax, "highest detectable note")
	f.IntVar(&opts.frame, "frame", opts.frame, "analysis frame length in samples")
	f.IntVar(&opts.hop, "hop", opts.hop, "analysis hop length in samples")

	return cmd
}

func (o *tuneOptions) config() (autotune.Config, error) {
	cfg := autotune.DefaultConfig()

	method, err := autotune.ParseMethod(o.method)
	if err != nil {
		return cfg, err
	}
	cfg.Method = method
	cfg.Scale = o.scale

	if cfg.Detection.MinFrequency, err = tuning.NoteToHz(o.fmin); err != nil {
		return cfg, fmt.Errorf("--fmin: %w", err)
	}
	if cfg.Detection.MaxFrequency, err = tuning.NoteToHz(o.fmax); err != nil {
		return cfg, fmt.Errorf("--fmax: %w", err)
	}
	cfg.Detection.FrameLength = o.frame
	cfg.Detection.HopLength = o.hop

	return cfg, nil
}

func runTune(opts *tuneOptions, in, out string, logger *zap.Logger) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	buf, err := audiofile.Load(in)
	if err != nil {
		return err
	}

	tuner, err := autotune.New(float64(buf.SampleRate), cfg)
	if err != nil {
		return err
	}

	logger.Info("tuning",
		zap.String("input", in),
		zap.Int("sample_rate", buf.SampleRate),
		zap.Float64("seconds", buf.Duration()),
		zap.Stringer("method", cfg.Method))

	corrected, analysis, err := tuner.ProcessWithAnalysis(buf.Mono())
	if err != nil {
		return err
	}

	result, err := audiofile.NewBuffer(buf.SampleRate, corrected)
	if err != nil {
		return err
	}
	if err := audiofile.Save(out, result); err != nil {
		return err
	}

	report := analysis.Report()
	logger.Info("tuned",
		zap.String("output", out),
		zap.Int("voiced_frames", report.VoicedFrames),
		zap.Int("frames", report.Frames),
		zap.Float64("mean_correction_cents", report.MeanCorrectionCents))

	if opts.report == "" {
		return nil
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(opts.report, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info("report written", zap.String("path", opts.report))

	return nil
}
