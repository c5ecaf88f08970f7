package pitchtrack

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	thresholdCount = 100
	priorAlpha     = 2
	priorBeta      = 18
)

// thresholdPrior returns the YIN thresholds 0.01..1 and the Beta prior mass
// assigned to each. The masses sum to 1.
func thresholdPrior() ([]float64, []float64) {
	dist := distuv.Beta{Alpha: priorAlpha, Beta: priorBeta}
	thresholds := make([]float64, thresholdCount)
	prior := make([]float64, thresholdCount)

	prev := dist.CDF(0)
	for k := range thresholdCount {
		t := float64(k+1) / thresholdCount
		cdf := dist.CDF(t)
		thresholds[k] = t
		prior[k] = cdf - prev
		prev = cdf
	}

	return thresholds, prior
}

// analyzeFrame runs the estimator on d.frame. It returns the refined period
// in samples (0 when no candidate was found) and the voicing probability.
func (d *Detector) analyzeFrame() (float64, float64, error) {
	if frameRMS(d.frame) < d.cfg.SilenceThreshold || isZero(d.frame) {
		return 0, 0, nil
	}

	if err := d.differenceFunction(); err != nil {
		return 0, 0, err
	}

	d.findTroughs()
	if len(d.troughs) == 0 {
		return 0, 0, nil
	}

	d.votes = d.votes[:0]
	for range d.troughs {
		d.votes = append(d.votes, 0)
	}

	prob := 0.0
	for k, thr := range d.thresholds {
		for j, tau := range d.troughs {
			if d.cmnd[tau] < thr {
				d.votes[j] += d.prior[k]
				prob += d.prior[k]
				break
			}
		}
	}

	if prob == 0 {
		return 0, 0, nil
	}

	best := 0
	for j := range d.votes {
		if d.votes[j] > d.votes[best] {
			best = j
		}
	}

	period := parabolicMinimum(d.cmnd, d.troughs[best])

	return period, math.Min(prob, 1), nil
}

// differenceFunction fills d.cmnd with the cumulative-mean-normalized
// difference for lags 0..maxPeriod+1.
//
// The squared difference over a window of W samples is expanded as
// E(0) + E(tau) - 2 r(tau), where E are windowed energies from a running sum
// and r is the cross-correlation of the frame with its first W samples,
// computed in the frequency domain.
func (d *Detector) differenceFunction() error {
	w := d.window

	clear(d.timeBuf)
	for j, v := range d.frame {
		d.timeBuf[j] = complex(v, 0)
	}

	if err := d.plan.Forward(d.frameFFT, d.timeBuf); err != nil {
		return fmt.Errorf("forward FFT failed: %w", err)
	}

	clear(d.timeBuf)
	for j := range w {
		d.timeBuf[j] = complex(d.frame[j], 0)
	}

	if err := d.plan.Forward(d.headFFT, d.timeBuf); err != nil {
		return fmt.Errorf("forward FFT failed: %w", err)
	}

	for k := range d.frameFFT {
		h := d.headFFT[k]
		d.frameFFT[k] *= complex(real(h), -imag(h))
	}

	if err := d.plan.Inverse(d.timeBuf, d.frameFFT); err != nil {
		return fmt.Errorf("inverse FFT failed: %w", err)
	}

	d.energy[0] = 0
	for j, v := range d.frame {
		d.energy[j+1] = d.energy[j] + v*v
	}

	e0 := d.energy[w]
	d.cmnd[0] = 1
	running := 0.0

	for tau := 1; tau < len(d.cmnd); tau++ {
		diff := e0 + d.energy[tau+w] - d.energy[tau] - 2*real(d.timeBuf[tau])
		if diff < 0 {
			diff = 0
		}

		running += diff
		if running > 0 {
			d.cmnd[tau] = diff * float64(tau) / running
		} else {
			d.cmnd[tau] = 1
		}
	}

	return nil
}

// findTroughs collects local minima of the normalized difference inside the
// period range, in increasing lag order.
func (d *Detector) findTroughs() {
	d.troughs = d.troughs[:0]

	for tau := d.minPeriod; tau <= d.maxPeriod; tau++ {
		v := d.cmnd[tau]
		if v <= d.cmnd[tau-1] && v < d.cmnd[tau+1] {
			d.troughs = append(d.troughs, tau)
		}
	}
}

// parabolicMinimum refines the integer minimum at i by fitting a parabola
// through its neighbors.
func parabolicMinimum(y []float64, i int) float64 {
	if i <= 0 || i >= len(y)-1 {
		return float64(i)
	}

	a, b, c := y[i-1], y[i], y[i+1]

	den := a - 2*b + c
	if den <= 0 {
		return float64(i)
	}

	shift := 0.5 * (a - c) / den

	return float64(i) + core.Clamp(shift, -1, 1)
}

func frameRMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}

func isZero(x []float64) bool {
	for _, v := range x {
		if v != 0 {
			return false
		}
	}

	return true
}
