package autotune

import (
	"math"

	"github.com/cwbudde/algo-autotune/dsp/tuning"
)

// Analysis is the outcome of one detection and correction pass. Source,
// Voicing, Corrected and Times all have one entry per frame.
type Analysis struct {
	SampleRate float64
	HopLength  int
	Method     Method
	Scale      string

	Times     []float64
	Source    tuning.Trajectory
	Voicing   tuning.Voicing
	Corrected tuning.Trajectory
}

// Report is a serializable per-frame view of an [Analysis].
type Report struct {
	SampleRate          float64       `json:"sample_rate" yaml:"sample_rate"`
	HopLength           int           `json:"hop_length" yaml:"hop_length"`
	Method              string        `json:"method" yaml:"method"`
	Scale               string        `json:"scale,omitempty" yaml:"scale,omitempty"`
	Frames              int           `json:"frames" yaml:"frames"`
	VoicedFrames        int           `json:"voiced_frames" yaml:"voiced_frames"` // frames with Voiced set
	MeanCorrectionCents float64       `json:"mean_correction_cents" yaml:"mean_correction_cents"`
	Frame               []FrameReport `json:"frame" yaml:"frame"`
}

// FrameReport describes one frame. Voiced is true only when both the
// detected and the corrected pitch are voiced, so it can differ from the
// detector's voicing decision. Probability is the detector's value either
// way. Frequency fields are omitted when Voiced is false.
type FrameReport struct {
	Time        float64 `json:"time" yaml:"time"`
	Voiced      bool    `json:"voiced" yaml:"voiced"`
	Probability float64 `json:"probability" yaml:"probability"`
	F0          float64 `json:"f0,omitempty" yaml:"f0,omitempty"`
	Corrected   float64 `json:"corrected,omitempty" yaml:"corrected,omitempty"`
	Note        string  `json:"note,omitempty" yaml:"note,omitempty"`
	Cents       float64 `json:"cents,omitempty" yaml:"cents,omitempty"`
}

// Report builds the per-frame report. Cents is the correction applied to a
// frame, positive when the pitch was raised.
func (a *Analysis) Report() Report {
	r := Report{
		SampleRate: a.SampleRate,
		HopLength:  a.HopLength,
		Method:     a.Method.String(),
		Scale:      a.Scale,
		Frames:     len(a.Source),
		Frame:      make([]FrameReport, len(a.Source)),
	}

	total := 0.0
	for i := range a.Source {
		f := FrameReport{Time: a.Times[i]}
		if i < len(a.Voicing) {
			f.Probability = a.Voicing[i].Probability
		}

		src, srcOK := a.Source[i].MIDI()
		dst, dstOK := a.Corrected[i].MIDI()
		if srcOK && dstOK {
			f.Voiced = true
			f.F0, _ = a.Source[i].Hz()
			f.Corrected, _ = a.Corrected[i].Hz()
			f.Note = tuning.NoteName(int(math.Round(dst)))
			f.Cents = 100 * (dst - src)

			r.VoicedFrames++
			total += math.Abs(f.Cents)
		}

		r.Frame[i] = f
	}

	if r.VoicedFrames > 0 {
		r.MeanCorrectionCents = total / float64(r.VoicedFrames)
	}

	return r
}
