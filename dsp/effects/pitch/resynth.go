package pitch

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
	"github.com/cwbudde/algo-autotune/dsp/pitchtrack"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
	"github.com/cwbudde/algo-autotune/dsp/window"
)

const (
	minPitchRatio = 0.25
	maxPitchRatio = 4.0

	pitchRatioIdentityEps = 1e-9
	weightFloor           = 1e-9
)

// ErrLengthMismatch is returned when a trajectory does not have one entry
// per analysis frame of the signal.
var ErrLengthMismatch = errors.New("pitch: trajectory length does not match signal frame count")

// Resynthesizer moves the pitch of a mono signal onto a target trajectory
// with time-domain pitch-synchronous overlap-add (TD-PSOLA).
//
// Regions where either the source or the target is unvoiced, or where the
// requested ratio is unity, are copied from the input unchanged. Output
// always has the length of the input.
//
// A Resynthesizer caches windows and owns a detector, so it is not safe for
// concurrent use.
type Resynthesizer struct {
	sampleRate float64
	cfg        pitchtrack.Config

	detector *pitchtrack.Detector
	windows  *window.Cache
	grain    []float64
}

// NewResynthesizer creates a resynthesizer working on the frame grid and
// search range of cfg.
func NewResynthesizer(sampleRate float64, cfg pitchtrack.Config) (*Resynthesizer, error) {
	detector, err := pitchtrack.NewDetector(sampleRate, cfg)
	if err != nil {
		return nil, fmt.Errorf("pitch: %w", err)
	}

	return &Resynthesizer{
		sampleRate: sampleRate,
		cfg:        cfg,
		detector:   detector,
		windows:    window.NewCache(window.TypeHann),
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (r *Resynthesizer) SampleRate() float64 { return r.sampleRate }

// Config returns the analysis configuration.
func (r *Resynthesizer) Config() pitchtrack.Config { return r.cfg }

// Resynthesize detects the source pitch of signal and resynthesizes it to
// follow target.
func (r *Resynthesizer) Resynthesize(signal []float64, target tuning.Trajectory) ([]float64, error) {
	if err := r.checkLength(len(signal), target, "target"); err != nil {
		return nil, err
	}

	source, _, err := r.detector.Detect(signal)
	if err != nil {
		return nil, fmt.Errorf("pitch: source detection failed: %w", err)
	}

	return r.ResynthesizeFrom(signal, source, target)
}

// ResynthesizeFrom resynthesizes signal, whose measured pitch is source,
// so that it follows target. Both trajectories must cover the frame grid of
// signal.
func (r *Resynthesizer) ResynthesizeFrom(signal []float64, source, target tuning.Trajectory) ([]float64, error) {
	if err := r.checkLength(len(signal), source, "source"); err != nil {
		return nil, err
	}

	if err := r.checkLength(len(signal), target, "target"); err != nil {
		return nil, err
	}

	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out, nil
	}

	src := contour{traj: source, hop: r.cfg.HopLength}
	tgt := contour{traj: target, hop: r.cfg.HopLength}

	marks := r.analysisMarks(signal, src)
	weights := make([]float64, len(signal))

	pos := float64(marks[0])
	for {
		s := int(math.Round(pos))
		next, ok := r.nextSynthesisMark(pos, marks, src, tgt)

		// A grain must reach the next synthesis mark, otherwise large
		// downward shifts leave holes between grains.
		minHalf := 0
		if ok {
			minHalf = int(math.Ceil(next-pos)) + 1
		}

		if err := r.overlapAdd(out, weights, signal, marks, nearestMark(marks, s), s, minHalf); err != nil {
			return nil, err
		}

		if !ok || int(math.Round(next)) >= len(signal) {
			break
		}

		pos = next
	}

	for i, w := range weights {
		if w > weightFloor {
			out[i] /= w
		} else {
			out[i] = signal[i]
		}
	}

	return out, nil
}

func (r *Resynthesizer) checkLength(n int, traj tuning.Trajectory, name string) error {
	want := r.detector.FrameCount(n)
	if len(traj) != want {
		return fmt.Errorf("%w: %s has %d frames, signal of %d samples has %d",
			ErrLengthMismatch, name, len(traj), n, want)
	}

	return nil
}

// nextSynthesisMark advances from synthesis position pos. Inside voiced
// regions with a non-unity ratio it steps by the target period, elsewhere it
// snaps to the next analysis mark. Positions stay fractional so the average
// spacing matches the target period exactly.
func (r *Resynthesizer) nextSynthesisMark(pos float64, marks []int, src, tgt contour) (float64, bool) {
	s := int(math.Round(pos))
	srcHz, srcOK := src.at(s)
	tgtHz, tgtOK := tgt.at(s)

	if srcOK && tgtOK {
		ratio := clampRatio(tgtHz / srcHz)
		if math.Abs(ratio-1) > pitchRatioIdentityEps {
			return pos + math.Max(r.sampleRate/(srcHz*ratio), 1), true
		}
	}

	k := firstMarkAfter(marks, s)
	if k < 0 {
		return 0, false
	}

	return float64(marks[k]), true
}

// overlapAdd places the Hann-windowed grain around analysis mark k at
// synthesis position s and accumulates its window into weights. The grain
// half width is at least minHalf.
func (r *Resynthesizer) overlapAdd(out, weights, signal []float64, marks []int, k, s, minHalf int) error {
	half := max(grainHalfLength(marks, k, len(signal)), minHalf)
	w := r.windows.Get(2*half + 1)

	r.grain = core.EnsureLen(r.grain, len(w))
	grain := r.grain
	clear(grain)

	start := marks[k] - half
	lo := max(start, 0)
	hi := min(start+len(grain), len(signal))
	if lo < hi {
		copy(grain[lo-start:], signal[lo:hi])
	}

	if err := window.ApplyCoefficientsInPlace(grain, w); err != nil {
		return fmt.Errorf("pitch: %w", err)
	}

	lo = max(s-half, 0)
	hi = min(s+half+1, len(out))

	for i := lo; i < hi; i++ {
		j := i - (s - half)
		out[i] += grain[j]
		weights[i] += w[j]
	}

	return nil
}

func clampRatio(ratio float64) float64 {
	return core.Clamp(ratio, minPitchRatio, maxPitchRatio)
}
