package testutil

import (
	"math"
	"math/rand"
)

// Tone generates a sine tone at a fixed frequency starting at phase 0.
func Tone(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Glide generates a phase-continuous sine whose instantaneous frequency is
// freq(i) for sample i. A non-positive frequency produces silence for that
// sample while the phase is held.
func Glide(freq func(i int) float64, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	phase := 0.0
	for i := range out {
		f := freq(i)
		if f <= 0 {
			continue
		}
		out[i] = amplitude * math.Sin(phase)
		phase += 2 * math.Pi * f / sampleRate
		if phase > 2*math.Pi {
			phase -= 2 * math.Pi
		}
	}
	return out
}

// JitteredTone generates a sine around centerHz whose frequency deviates by up
// to depth (a fraction of centerHz, e.g. 0.1 for 10%) following a slow
// deterministic random walk that changes every segment samples.
func JitteredTone(seed int64, centerHz, depth, sampleRate, amplitude float64, segment, length int) []float64 {
	if segment < 1 {
		segment = 1
	}
	rng := rand.New(rand.NewSource(seed))
	steps := length/segment + 2
	offsets := make([]float64, steps)
	for i := range offsets {
		offsets[i] = (rng.Float64()*2 - 1) * depth
	}
	return Glide(func(i int) float64 {
		k := i / segment
		frac := float64(i%segment) / float64(segment)
		dev := offsets[k]*(1-frac) + offsets[k+1]*frac
		return centerHz * (1 + dev)
	}, sampleRate, amplitude, length)
}

// Noise generates white noise with a fixed seed for reproducibility.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Silence returns length zero samples.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// Concat joins signals end to end.
func Concat(parts ...[]float64) []float64 {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
