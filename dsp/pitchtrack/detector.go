package pitchtrack

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-autotune/dsp/core"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

// Detector is a probabilistic YIN pitch estimator bound to one sample rate
// and [Config]. It keeps FFT plans and scratch buffers between frames, so a
// Detector is not safe for concurrent use.
type Detector struct {
	sampleRate float64
	cfg        Config

	window    int
	minPeriod int
	maxPeriod int

	thresholds []float64
	prior      []float64

	plan    *algofft.Plan[complex128]
	fftSize int

	frame    []float64
	energy   []float64
	cmnd     []float64
	timeBuf  []complex128
	frameFFT []complex128
	headFFT  []complex128
	troughs  []int
	votes    []float64
}

// NewDetector creates a detector for sampleRate with cfg.
func NewDetector(sampleRate float64, cfg Config) (*Detector, error) {
	if err := cfg.Validate(sampleRate); err != nil {
		return nil, err
	}

	fftSize := nextPowerOf2(cfg.FrameLength)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("pitchtrack: failed to create FFT plan: %w", err)
	}

	minPeriod, maxPeriod := cfg.periodRange(sampleRate)
	thresholds, prior := thresholdPrior()

	return &Detector{
		sampleRate: sampleRate,
		cfg:        cfg,
		window:     cfg.FrameLength / 2,
		minPeriod:  minPeriod,
		maxPeriod:  maxPeriod,
		thresholds: thresholds,
		prior:      prior,
		plan:       plan,
		fftSize:    fftSize,
		frame:      make([]float64, cfg.FrameLength),
		energy:     make([]float64, cfg.FrameLength+1),
		cmnd:       make([]float64, maxPeriod+2),
		timeBuf:    make([]complex128, fftSize),
		frameFFT:   make([]complex128, fftSize),
		headFFT:    make([]complex128, fftSize),
	}, nil
}

// DetectPitch is a one-shot helper that builds a [Detector] and runs
// [Detector.Detect].
func DetectPitch(signal []float64, sampleRate float64, cfg Config) (tuning.Trajectory, tuning.Voicing, error) {
	d, err := NewDetector(sampleRate, cfg)
	if err != nil {
		return nil, nil, err
	}

	return d.Detect(signal)
}

// SampleRate returns the sample rate in Hz.
func (d *Detector) SampleRate() float64 { return d.sampleRate }

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// PeriodRange returns the shortest and longest candidate period in samples.
func (d *Detector) PeriodRange() (int, int) { return d.minPeriod, d.maxPeriod }

// FrameCount returns the number of frames Detect produces for n samples.
func (d *Detector) FrameCount(n int) int {
	return tuning.FrameCount(n, d.cfg.HopLength)
}

// Detect analyzes signal and returns one pitch and one voicing decision per
// centered frame. An empty signal yields empty results.
func (d *Detector) Detect(signal []float64) (tuning.Trajectory, tuning.Voicing, error) {
	if i := core.FirstNonFinite(signal); i >= 0 {
		return nil, nil, fmt.Errorf("%w at index %d", ErrNonFiniteInput, i)
	}

	n := d.FrameCount(len(signal))
	traj := make(tuning.Trajectory, n)
	voicing := make(tuning.Voicing, n)

	for i := range n {
		d.loadFrame(signal, i)

		period, prob, err := d.analyzeFrame()
		if err != nil {
			return nil, nil, fmt.Errorf("pitchtrack: frame %d: %w", i, err)
		}

		voiced := period > 0 && prob > 0 && prob >= d.cfg.VoicingThreshold
		voicing[i] = tuning.FrameVoicing{Voiced: voiced, Probability: prob}

		if voiced {
			traj[i] = tuning.Voiced(d.periodToHz(period))
		}
	}

	return traj, voicing, nil
}

// loadFrame copies frame i, centered on sample i*hop, into d.frame with
// zero padding outside the signal.
func (d *Detector) loadFrame(signal []float64, i int) {
	clear(d.frame)

	start := i*d.cfg.HopLength - d.cfg.FrameLength/2
	lo := max(start, 0)
	hi := min(start+d.cfg.FrameLength, len(signal))

	if lo < hi {
		copy(d.frame[lo-start:], signal[lo:hi])
	}
}

func (d *Detector) periodToHz(period float64) float64 {
	hz := d.sampleRate / period
	return core.Clamp(hz, d.cfg.MinFrequency, d.cfg.MaxFrequency)
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
