package pitch

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-autotune/dsp/core"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

// contour evaluates a frame trajectory at sample positions. Frame i is
// centered at sample i*hop. Between two voiced frames the frequency is
// interpolated linearly, otherwise the nearest frame decides.
type contour struct {
	traj tuning.Trajectory
	hop  int
}

func (c contour) at(sample int) (float64, bool) {
	if len(c.traj) == 0 {
		return 0, false
	}

	pos := float64(sample) / float64(c.hop)
	i0 := int(math.Floor(pos))
	i0 = max(0, min(i0, len(c.traj)-1))
	i1 := min(i0+1, len(c.traj)-1)

	f0, ok0 := c.traj[i0].Hz()
	f1, ok1 := c.traj[i1].Hz()

	if ok0 && ok1 {
		frac := core.Clamp(pos-float64(i0), 0, 1)
		return f0 + (f1-f0)*frac, true
	}

	if pos-float64(i0) < 0.5 {
		return f0, ok0
	}

	return f1, ok1
}

// analysisMarks places pitch marks one local period apart in voiced regions,
// each snapped to the waveform maximum within a quarter period, and on a
// half-hop grid elsewhere. Marks are strictly increasing and start at or
// near sample 0.
func (r *Resynthesizer) analysisMarks(signal []float64, src contour) []int {
	n := len(signal)
	unvoicedStep := max(r.cfg.HopLength/2, 1)

	marks := make([]int, 0, n/unvoicedStep+1)
	last := -1
	t := 0

	for t < n {
		hz, voiced := src.at(t)
		if !voiced {
			marks = append(marks, t)
			last = t
			t += unvoicedStep

			continue
		}

		period := r.sampleRate / hz
		pos := snapToPeak(signal, t, int(period/4), last+1)

		marks = append(marks, pos)
		last = pos
		t = max(pos+int(math.Round(period)), pos+1)
	}

	return marks
}

// snapToPeak returns the index of the largest sample in [center-radius,
// center+radius], never earlier than floor.
func snapToPeak(signal []float64, center, radius, floor int) int {
	lo := max(center-radius, floor, 0)
	hi := min(center+radius, len(signal)-1)

	if lo > hi {
		return max(min(center, len(signal)-1), floor)
	}

	best := lo
	for i := lo + 1; i <= hi; i++ {
		if signal[i] > signal[best] {
			best = i
		}
	}

	return best
}

// nearestMark returns the index of the mark closest to s. Ties go to the
// earlier mark.
func nearestMark(marks []int, s int) int {
	k := sort.SearchInts(marks, s)
	if k == 0 {
		return 0
	}

	if k == len(marks) {
		return len(marks) - 1
	}

	if s-marks[k-1] <= marks[k]-s {
		return k - 1
	}

	return k
}

// firstMarkAfter returns the index of the first mark strictly after s, or
// -1.
func firstMarkAfter(marks []int, s int) int {
	k := sort.SearchInts(marks, s+1)
	if k == len(marks) {
		return -1
	}

	return k
}

// grainHalfLength returns the half width of the grain around mark k: the
// distance to the next mark, or for the last mark the larger of the previous
// spacing and the remaining tail.
func grainHalfLength(marks []int, k, n int) int {
	if k+1 < len(marks) {
		return max(marks[k+1]-marks[k], 1)
	}

	half := n - marks[k]
	if k > 0 {
		half = max(half, marks[k]-marks[k-1])
	}

	return max(half, 1)
}
