package autotune

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-autotune/dsp/pitchtrack"
	"github.com/cwbudde/algo-autotune/dsp/tuning"
	"github.com/cwbudde/algo-autotune/internal/testutil"
)

const testSampleRate = 22050

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		mutate     func(*Config)
		wantErr    error
		anyErr     bool
	}{
		{name: "defaults", sampleRate: testSampleRate},
		{name: "nearest note ignores scale", sampleRate: testSampleRate, mutate: func(c *Config) {
			c.Method = MethodNearestNote
			c.Scale = "not a scale"
		}},
		{name: "minor scale", sampleRate: testSampleRate, mutate: func(c *Config) { c.Scale = "A minor" }},
		{name: "invalid scale", sampleRate: testSampleRate, mutate: func(c *Config) { c.Scale = "H:maj" }, wantErr: tuning.ErrInvalidScale},
		{name: "empty scale", sampleRate: testSampleRate, mutate: func(c *Config) { c.Scale = "" }, wantErr: tuning.ErrInvalidScale},
		{name: "unknown method", sampleRate: testSampleRate, mutate: func(c *Config) { c.Method = Method(7) }, anyErr: true},
		{name: "invalid sample rate", sampleRate: 0, anyErr: true},
		{name: "invalid detection", sampleRate: testSampleRate, mutate: func(c *Config) { c.Detection.HopLength = 0 }, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}

			tuner, err := New(tt.sampleRate, cfg)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Fatal("New() error = nil, want error")
				}
			default:
				if err != nil {
					t.Fatalf("New() error = %v", err)
				}

				if tuner == nil {
					t.Fatal("New() returned nil without error")
				}
			}
		})
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{in: "closest", want: MethodNearestNote},
		{in: "nearest", want: MethodNearestNote},
		{in: "Nearest-Note", want: MethodNearestNote},
		{in: " scale ", want: MethodScale},
		{in: "SCALE", want: MethodScale},
		{in: "pyin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseMethod(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}

		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, m := range []Method{MethodNearestNote, MethodScale} {
		back, err := ParseMethod(m.String())
		if err != nil || back != m {
			t.Fatalf("ParseMethod(%q) = %v, %v", m.String(), back, err)
		}
	}
}

// A one-second 440 Hz tone whose pitch wanders by up to a tenth of a
// semitone from frame to frame, corrected to C major, must only contain
// C major pitch classes.
func TestTunerJitteredToneStaysInScale(t *testing.T) {
	tuner, err := New(testSampleRate, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	depth := math.Pow(2, 0.1/12) - 1
	hop := tuner.Config().Detection.HopLength
	signal := testutil.JitteredTone(42, 440, depth, testSampleRate, 0.5, hop, testSampleRate)

	a, err := tuner.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(a.Corrected) != pitchtrack.FrameCount(len(signal), hop) {
		t.Fatalf("len(Corrected) = %d, want %d", len(a.Corrected), pitchtrack.FrameCount(len(signal), hop))
	}

	cMajor := tuning.MustParseScale("C:maj")
	outside := 0

	for _, p := range a.Corrected {
		midi, ok := p.MIDI()
		if ok && !cMajor.Contains(midi, 1e-6) {
			outside++
		}
	}

	if outside != 0 {
		t.Fatalf("%d corrected frames outside C major", outside)
	}

	if voiced := a.Corrected.VoicedCount(); voiced*10 < len(a.Corrected)*8 {
		t.Fatalf("only %d/%d frames voiced", voiced, len(a.Corrected))
	}

	for i := 2; i < len(a.Corrected)-2; i++ {
		if hz, ok := a.Corrected[i].Hz(); ok && math.Abs(hz-440) > 1e-6 {
			t.Fatalf("frame %d corrected to %v, want 440 Hz", i, a.Corrected[i])
		}
	}
}

func TestTunerSilence(t *testing.T) {
	tuner, err := New(testSampleRate, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signal := testutil.Silence(testSampleRate)

	out, a, err := tuner.ProcessWithAnalysis(signal)
	if err != nil {
		t.Fatalf("ProcessWithAnalysis() error = %v", err)
	}

	if a.Source.VoicedCount() != 0 || a.Corrected.VoicedCount() != 0 {
		t.Fatalf("silence produced voiced frames: %d source, %d corrected",
			a.Source.VoicedCount(), a.Corrected.VoicedCount())
	}

	if len(out) != len(signal) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(signal))
	}

	if rms := testutil.RMS(out); rms > 1e-9 {
		t.Fatalf("output RMS = %v, want ~0", rms)
	}
}

func TestTunerProcessCorrectsFlatTone(t *testing.T) {
	for _, method := range []Method{MethodScale, MethodNearestNote} {
		cfg := DefaultConfig()
		cfg.Method = method

		tuner, err := New(testSampleRate, cfg)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		// 30 cents flat of A3.
		signal := testutil.Tone(220*math.Pow(2, -0.3/12), testSampleRate, 0.5, testSampleRate)

		out, err := tuner.Process(signal)
		if err != nil {
			t.Fatalf("%v: Process() error = %v", method, err)
		}

		if len(out) != len(signal) {
			t.Fatalf("%v: len(out) = %d, want %d", method, len(out), len(signal))
		}

		got, _, err := pitchtrack.DetectPitch(out, testSampleRate, cfg.Detection)
		if err != nil {
			t.Fatalf("DetectPitch() error = %v", err)
		}

		for i := 4; i < len(got)-4; i++ {
			hz, ok := got[i].Hz()
			if !ok {
				t.Fatalf("%v: frame %d of corrected output unvoiced", method, i)
			}

			if cents := 1200 * math.Log2(hz/220); math.Abs(cents) > 15 {
				t.Fatalf("%v: frame %d at %.2f Hz (%.1f cents from A3)", method, i, hz, cents)
			}
		}
	}
}

func TestAnalysisReport(t *testing.T) {
	tuner, err := New(testSampleRate, DefaultConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	signal := testutil.Concat(
		testutil.Tone(225, testSampleRate, 0.5, testSampleRate/2),
		testutil.Silence(testSampleRate/2),
	)

	a, err := tuner.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	r := a.Report()
	if r.Frames != len(a.Source) || len(r.Frame) != r.Frames {
		t.Fatalf("report has %d/%d frames, want %d", r.Frames, len(r.Frame), len(a.Source))
	}

	if r.Method != "scale" || r.Scale != "C:maj" || r.HopLength != 512 || r.SampleRate != testSampleRate {
		t.Fatalf("report header = %+v", r)
	}

	if r.VoicedFrames == 0 || r.VoicedFrames != a.Corrected.VoicedCount() {
		t.Fatalf("VoicedFrames = %d, corrected voiced = %d", r.VoicedFrames, a.Corrected.VoicedCount())
	}

	total := 0.0
	for i, f := range r.Frame {
		if !f.Voiced {
			continue
		}

		want := 100 * (tuning.HzToMIDI(f.Corrected) - tuning.HzToMIDI(f.F0))
		if math.Abs(f.Cents-want) > 1e-9 {
			t.Fatalf("frame %d cents = %v, want %v", i, f.Cents, want)
		}

		total += math.Abs(f.Cents)
	}

	if math.Abs(r.MeanCorrectionCents-total/float64(r.VoicedFrames)) > 1e-9 {
		t.Fatalf("MeanCorrectionCents = %v, want %v", r.MeanCorrectionCents, total/float64(r.VoicedFrames))
	}

	// 225 Hz is about 39 cents above A3.
	mid := r.Frame[5]
	if !mid.Voiced || mid.Note != "A3" || math.Abs(mid.Cents+38.9) > 3 {
		t.Fatalf("frame 5 = %+v, want voiced A3 lowered by ~39 cents", mid)
	}

	last := r.Frame[len(r.Frame)-1]
	if last.Voiced || last.F0 != 0 || last.Note != "" {
		t.Fatalf("last frame = %+v, want unvoiced", last)
	}

	if math.Abs(last.Time-float64((len(r.Frame)-1)*512)/testSampleRate) > 1e-12 {
		t.Fatalf("last frame time = %v", last.Time)
	}
}

func TestReportVoicedNeedsCorrectedPitch(t *testing.T) {
	a := &Analysis{
		SampleRate: testSampleRate,
		HopLength:  512,
		Method:     MethodScale,
		Times:      []float64{0, 0.1},
		Source:     tuning.Trajectory{tuning.Voiced(440), tuning.Voiced(440)},
		Voicing: tuning.Voicing{
			{Voiced: true, Probability: 0.9},
			{Voiced: true, Probability: 0.8},
		},
		Corrected: tuning.Trajectory{tuning.Voiced(440), tuning.Unvoiced},
	}

	r := a.Report()
	if r.VoicedFrames != 1 {
		t.Fatalf("VoicedFrames = %d, want 1", r.VoicedFrames)
	}

	f := r.Frame[1]
	if f.Voiced || f.F0 != 0 || f.Corrected != 0 || f.Note != "" {
		t.Fatalf("frame 1 = %+v, want unvoiced without frequencies", f)
	}
	if f.Probability != 0.8 {
		t.Fatalf("frame 1 probability = %v, want 0.8", f.Probability)
	}
}
