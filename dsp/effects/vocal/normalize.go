package vocal

import (
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Peak returns the largest absolute sample value of buf.
func Peak(buf []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	return math.Max(math.Abs(floats.Max(buf)), math.Abs(floats.Min(buf)))
}

// PeakNormalize scales buf in place so its peak magnitude equals target and
// returns the applied gain. Silent or non-finite buffers are left untouched
// and report a gain of 1.
func PeakNormalize(buf []float64, target float64) float64 {
	peak := Peak(buf)
	if !core.IsFinitePositive(peak) || !core.IsFinitePositive(target) {
		return 1
	}
	gain := target / peak
	vecmath.ScaleBlock(buf, buf, gain)
	return gain
}
