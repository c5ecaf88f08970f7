package vocal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-autotune/dsp/core"
)

const (
	defaultCompressorThresholdDB = -20.0
	defaultCompressorRatio       = 4.0
	defaultCompressorAttackMs    = 10.0
	defaultCompressorReleaseMs   = 100.0

	minCompressorRatio     = 1.0
	maxCompressorRatio     = 100.0
	minCompressorAttackMs  = 0.1
	maxCompressorAttackMs  = 1000.0
	minCompressorReleaseMs = 1.0
	maxCompressorReleaseMs = 5000.0
	maxCompressorKneeDB    = 24.0

	// log2(10) / 20, converts dB to the log2 domain.
	log2Of10Div20 = 0.166096404744
)

// CompressorSettings holds the user-facing compressor parameters.
type CompressorSettings struct {
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
}

// DefaultCompressorSettings returns -20 dB, 4:1, 10 ms attack and 100 ms
// release.
func DefaultCompressorSettings() CompressorSettings {
	return CompressorSettings{
		ThresholdDB: defaultCompressorThresholdDB,
		Ratio:       defaultCompressorRatio,
		AttackMs:    defaultCompressorAttackMs,
		ReleaseMs:   defaultCompressorReleaseMs,
	}
}

// Compressor is a feed-forward compressor with a peak envelope follower
// and a log2-domain gain computer. The knee is hard unless set with
// [Compressor.SetKnee]. No makeup gain is applied by default.
type Compressor struct {
	thresholdDB  float64
	ratio        float64
	kneeDB       float64
	attackMs     float64
	releaseMs    float64
	makeupGainDB float64

	sampleRate float64

	peakLevel float64

	attackCoeff   float64
	releaseCoeff  float64
	thresholdLog2 float64
	kneeWidthLog2 float64
	makeupGainLin float64

	minGain float64
}

// NewCompressor creates a compressor for sampleRate configured from s.
func NewCompressor(sampleRate float64, s CompressorSettings) (*Compressor, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("compressor sample rate must be positive and finite: %f", sampleRate)
	}

	c := &Compressor{
		thresholdDB:   defaultCompressorThresholdDB,
		ratio:         defaultCompressorRatio,
		attackMs:      defaultCompressorAttackMs,
		releaseMs:     defaultCompressorReleaseMs,
		sampleRate:    sampleRate,
		makeupGainLin: 1,
		minGain:       1,
	}

	if err := c.SetThreshold(s.ThresholdDB); err != nil {
		return nil, err
	}
	if err := c.SetRatio(s.Ratio); err != nil {
		return nil, err
	}
	if err := c.SetAttack(s.AttackMs); err != nil {
		return nil, err
	}
	if err := c.SetRelease(s.ReleaseMs); err != nil {
		return nil, err
	}

	return c, nil
}

// SetThreshold sets the compression threshold in dBFS.
func (c *Compressor) SetThreshold(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) || dB > 0 {
		return fmt.Errorf("compressor threshold must be finite and <= 0 dB: %f", dB)
	}
	c.thresholdDB = dB
	c.updateCoefficients()
	return nil
}

// SetRatio sets the compression ratio in [1, 100].
func (c *Compressor) SetRatio(ratio float64) error {
	if ratio < minCompressorRatio || ratio > maxCompressorRatio ||
		math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return fmt.Errorf("compressor ratio must be in [%f, %f]: %f",
			minCompressorRatio, maxCompressorRatio, ratio)
	}
	c.ratio = ratio
	c.updateCoefficients()
	return nil
}

// SetKnee sets the soft-knee width in dB. Zero gives a hard knee.
func (c *Compressor) SetKnee(kneeDB float64) error {
	if kneeDB < 0 || kneeDB > maxCompressorKneeDB || math.IsNaN(kneeDB) {
		return fmt.Errorf("compressor knee must be in [0, %f]: %f", maxCompressorKneeDB, kneeDB)
	}
	c.kneeDB = kneeDB
	c.updateCoefficients()
	return nil
}

// SetAttack sets the attack time in milliseconds.
func (c *Compressor) SetAttack(ms float64) error {
	if ms < minCompressorAttackMs || ms > maxCompressorAttackMs ||
		math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("compressor attack must be in [%f, %f]: %f",
			minCompressorAttackMs, maxCompressorAttackMs, ms)
	}
	c.attackMs = ms
	c.updateTimeConstants()
	return nil
}

// SetRelease sets the release time in milliseconds.
func (c *Compressor) SetRelease(ms float64) error {
	if ms < minCompressorReleaseMs || ms > maxCompressorReleaseMs ||
		math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("compressor release must be in [%f, %f]: %f",
			minCompressorReleaseMs, maxCompressorReleaseMs, ms)
	}
	c.releaseMs = ms
	c.updateTimeConstants()
	return nil
}

// SetMakeupGain sets a static output gain in dB.
func (c *Compressor) SetMakeupGain(dB float64) error {
	if math.IsNaN(dB) || math.IsInf(dB, 0) {
		return fmt.Errorf("compressor makeup gain must be finite: %f", dB)
	}
	c.makeupGainDB = dB
	c.updateCoefficients()
	return nil
}

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the knee width in dB.
func (c *Compressor) Knee() float64 { return c.kneeDB }

// Attack returns the attack time in milliseconds.
func (c *Compressor) Attack() float64 { return c.attackMs }

// Release returns the release time in milliseconds.
func (c *Compressor) Release() float64 { return c.releaseMs }

// SampleRate returns the sample rate in Hz.
func (c *Compressor) SampleRate() float64 { return c.sampleRate }

// MaxGainReduction returns the smallest gain applied since the last reset,
// 1 meaning no reduction.
func (c *Compressor) MaxGainReduction() float64 { return c.minGain }

// ProcessSample processes one sample.
func (c *Compressor) ProcessSample(input float64) float64 {
	level := math.Abs(input)
	if level > c.peakLevel {
		c.peakLevel += (level - c.peakLevel) * c.attackCoeff
	} else {
		c.peakLevel = level + (c.peakLevel-level)*c.releaseCoeff
	}

	gain := c.gain(c.peakLevel)
	if gain < c.minGain {
		c.minGain = gain
	}

	return input * gain * c.makeupGainLin
}

// ProcessInPlace applies compression to buf in place.
func (c *Compressor) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = c.ProcessSample(buf[i])
	}
}

// OutputLevel returns the steady-state output level for an input level,
// tracing the static compression curve.
func (c *Compressor) OutputLevel(input float64) float64 {
	input = math.Abs(input)
	return input * c.gain(input) * c.makeupGainLin
}

// Reset clears the envelope follower and metering.
func (c *Compressor) Reset() {
	c.peakLevel = 0
	c.minGain = 1
}

func (c *Compressor) updateCoefficients() {
	c.thresholdLog2 = c.thresholdDB * log2Of10Div20
	c.kneeWidthLog2 = c.kneeDB * log2Of10Div20
	c.makeupGainLin = core.DBToLinear(c.makeupGainDB)
	c.updateTimeConstants()
}

func (c *Compressor) updateTimeConstants() {
	c.attackCoeff = 1 - math.Exp(-math.Ln2/(c.attackMs*0.001*c.sampleRate))
	c.releaseCoeff = math.Exp(-math.Ln2 / (c.releaseMs * 0.001 * c.sampleRate))
}

// gain returns the linear gain for an envelope level. Inside the knee the
// overshoot is smoothed quadratically.
func (c *Compressor) gain(level float64) float64 {
	if level <= 0 {
		return 1
	}

	overshoot := mathLog2(level) - c.thresholdLog2

	if c.kneeWidthLog2 <= 0 {
		if overshoot <= 0 {
			return 1
		}
		return mathPower2(-overshoot * (1 - 1/c.ratio))
	}

	half := c.kneeWidthLog2 / 2

	switch {
	case overshoot < -half:
		return 1
	case overshoot <= half:
		s := overshoot + half
		overshoot = s * s / (2 * c.kneeWidthLog2)
	}

	return mathPower2(-overshoot * (1 - 1/c.ratio))
}
