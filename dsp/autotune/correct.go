package autotune

import (
	"math"

	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

// CorrectNearestNote rounds every voiced frame of traj to the nearest
// equal-tempered semitone. Unvoiced frames stay unvoiced. Frames are
// independent; no smoothing is applied. A frame exactly between two
// semitones goes to the even MIDI note.
func CorrectNearestNote(traj tuning.Trajectory) tuning.Trajectory {
	out := make(tuning.Trajectory, len(traj))
	for i, p := range traj {
		midi, ok := p.MIDI()
		if !ok {
			continue
		}
		out[i] = tuning.Voiced(tuning.MIDIToHz(nearestSemitone(midi)))
	}
	return out
}

func nearestSemitone(midi float64) float64 {
	return math.RoundToEven(midi)
}

// CorrectToScale snaps every voiced frame of traj to the nearest tone of
// scale and smooths the result with [MedianSmooth]. Unvoiced frames stay
// unvoiced.
func CorrectToScale(traj tuning.Trajectory, scale *tuning.Scale) tuning.Trajectory {
	snapped := make(tuning.Trajectory, len(traj))
	for i, p := range traj {
		snapped[i] = scale.Nearest(p)
	}
	return MedianSmooth(snapped)
}

// MedianSmooth applies a three-frame median filter to traj.
//
// Missing neighbors at the ends count as 0 Hz, so the first and last frames
// become the lower of themselves and their only neighbor. A window that
// touches an unvoiced frame has no median; such positions keep their input
// value. Positions that are unvoiced in traj are unvoiced in the result.
func MedianSmooth(traj tuning.Trajectory) tuning.Trajectory {
	out := make(tuning.Trajectory, len(traj))
	for i, p := range traj {
		if !p.IsVoiced() {
			continue
		}

		left, okLeft := neighbor(traj, i-1)
		right, okRight := neighbor(traj, i+1)
		if !okLeft || !okRight {
			out[i] = p
			continue
		}

		hz, _ := p.Hz()
		out[i] = tuning.Voiced(median3(left, hz, right))
	}
	return out
}

// neighbor returns the value of frame i for the median window. Frames outside
// the trajectory are zero padding; unvoiced frames report ok == false.
func neighbor(traj tuning.Trajectory, i int) (float64, bool) {
	if i < 0 || i >= len(traj) {
		return 0, true
	}
	return traj[i].Hz()
}

func median3(a, b, c float64) float64 {
	return math.Max(math.Min(a, b), math.Min(math.Max(a, b), c))
}
