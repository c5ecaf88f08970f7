package pitchtrack

import (
	"math"
	"testing"
)

func TestThresholdPrior(t *testing.T) {
	thresholds, prior := thresholdPrior()
	if len(thresholds) != thresholdCount || len(prior) != thresholdCount {
		t.Fatalf("got %d thresholds / %d masses, want %d", len(thresholds), len(prior), thresholdCount)
	}

	sum := 0.0
	for k, p := range prior {
		if p < 0 {
			t.Fatalf("prior[%d] = %f < 0", k, p)
		}
		sum += p
	}

	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("prior mass = %f, want 1", sum)
	}

	if thresholds[0] != 0.01 || thresholds[thresholdCount-1] != 1 {
		t.Fatalf("threshold range = [%f, %f], want [0.01, 1]", thresholds[0], thresholds[thresholdCount-1])
	}
}

func TestParabolicMinimum(t *testing.T) {
	y := make([]float64, 5)
	for i := range y {
		d := float64(i) - 2.3
		y[i] = d * d
	}

	if got := parabolicMinimum(y, 2); math.Abs(got-2.3) > 1e-12 {
		t.Fatalf("parabolicMinimum() = %f, want 2.3", got)
	}

	if got := parabolicMinimum(y, 0); got != 0 {
		t.Fatalf("parabolicMinimum() at edge = %f, want 0", got)
	}

	flat := []float64{1, 1, 1}
	if got := parabolicMinimum(flat, 1); got != 1 {
		t.Fatalf("parabolicMinimum() on flat = %f, want 1", got)
	}
}

func TestDifferenceFunctionMatchesDirect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FrameLength = 256
	cfg.HopLength = 64
	cfg.MinFrequency = 200

	d, err := NewDetector(8000, cfg)
	if err != nil {
		t.Fatalf("NewDetector() error = %v", err)
	}

	for i := range d.frame {
		d.frame[i] = math.Sin(2*math.Pi*310*float64(i)/8000) + 0.1*math.Cos(float64(i*i)/97)
	}

	if err := d.differenceFunction(); err != nil {
		t.Fatalf("differenceFunction() error = %v", err)
	}

	w := d.window
	running := 0.0

	for tau := 1; tau < len(d.cmnd); tau++ {
		diff := 0.0
		for j := range w {
			x := d.frame[j] - d.frame[j+tau]
			diff += x * x
		}

		running += diff
		want := diff * float64(tau) / running

		if math.Abs(d.cmnd[tau]-want) > 1e-9 {
			t.Fatalf("cmnd[%d] = %.12f, want %.12f", tau, d.cmnd[tau], want)
		}
	}
}
