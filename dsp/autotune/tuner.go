package autotune

import (
	"fmt"

	"github.com/cwbudde/algo-autotune/dsp/effects/pitch"
	"github.com/cwbudde/algo-autotune/dsp/pitchtrack"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

const defaultScale = "C:maj"

// Config configures a [Tuner].
type Config struct {
	// Detection is shared by pitch detection and resynthesis.
	Detection pitchtrack.Config
	// Method selects the correction function.
	Method Method
	// Scale names the target scale for MethodScale, e.g. "C:maj" or
	// "F# minor". It is ignored by MethodNearestNote.
	Scale string
}

// DefaultConfig returns detection defaults with scale correction to C major.
func DefaultConfig() Config {
	return Config{
		Detection: pitchtrack.DefaultConfig(),
		Method:    MethodScale,
		Scale:     defaultScale,
	}
}

// Tuner runs detection, correction and resynthesis for one sample rate. All
// configuration, including the scale, is validated by [New]. A Tuner reuses
// internal buffers and is not safe for concurrent use.
type Tuner struct {
	sampleRate float64
	cfg        Config
	scale      *tuning.Scale

	detector *pitchtrack.Detector
	resynth  *pitch.Resynthesizer
}

// New creates a tuner for sampleRate. An unparsable scale yields an error
// wrapping [tuning.ErrInvalidScale].
func New(sampleRate float64, cfg Config) (*Tuner, error) {
	t := &Tuner{sampleRate: sampleRate, cfg: cfg}

	switch cfg.Method {
	case MethodNearestNote:
	case MethodScale:
		scale, err := tuning.ParseScale(cfg.Scale)
		if err != nil {
			return nil, fmt.Errorf("autotune: %w", err)
		}
		t.scale = scale
	default:
		return nil, fmt.Errorf("autotune: unknown correction method %d", int(cfg.Method))
	}

	detector, err := pitchtrack.NewDetector(sampleRate, cfg.Detection)
	if err != nil {
		return nil, fmt.Errorf("autotune: %w", err)
	}

	resynth, err := pitch.NewResynthesizer(sampleRate, cfg.Detection)
	if err != nil {
		return nil, fmt.Errorf("autotune: %w", err)
	}

	t.detector = detector
	t.resynth = resynth

	return t, nil
}

// SampleRate returns the sample rate in Hz.
func (t *Tuner) SampleRate() float64 { return t.sampleRate }

// Config returns the tuner configuration.
func (t *Tuner) Config() Config { return t.cfg }

// Scale returns the target scale, or nil for MethodNearestNote.
func (t *Tuner) Scale() *tuning.Scale { return t.scale }

// Correct applies the configured correction to traj.
func (t *Tuner) Correct(traj tuning.Trajectory) tuning.Trajectory {
	if t.cfg.Method == MethodScale {
		return CorrectToScale(traj, t.scale)
	}
	return CorrectNearestNote(traj)
}

// Analyze detects and corrects the pitch of signal without resynthesis.
func (t *Tuner) Analyze(signal []float64) (*Analysis, error) {
	source, voicing, err := t.detector.Detect(signal)
	if err != nil {
		return nil, fmt.Errorf("autotune: %w", err)
	}

	scaleName := ""
	if t.scale != nil {
		scaleName = t.scale.Name()
	}

	return &Analysis{
		SampleRate: t.sampleRate,
		HopLength:  t.cfg.Detection.HopLength,
		Method:     t.cfg.Method,
		Scale:      scaleName,
		Times:      tuning.FrameTimes(len(source), t.cfg.Detection.HopLength, t.sampleRate),
		Source:     source,
		Voicing:    voicing,
		Corrected:  t.Correct(source),
	}, nil
}

// Process pitch-corrects signal. The result has the length of signal.
func (t *Tuner) Process(signal []float64) ([]float64, error) {
	out, _, err := t.ProcessWithAnalysis(signal)
	return out, err
}

// ProcessWithAnalysis is like [Tuner.Process] and also returns the analysis
// that drove the correction.
func (t *Tuner) ProcessWithAnalysis(signal []float64) ([]float64, *Analysis, error) {
	a, err := t.Analyze(signal)
	if err != nil {
		return nil, nil, err
	}

	out, err := t.resynth.ResynthesizeFrom(signal, a.Source, a.Corrected)
	if err != nil {
		return nil, nil, fmt.Errorf("autotune: %w", err)
	}

	return out, a, nil
}
