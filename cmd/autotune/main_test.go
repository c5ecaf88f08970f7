package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/cwbudde/algo-autotune/dsp/autotune"
	"github.com/cwbudde/algo-autotune/internal/audiofile"
	"github.com/cwbudde/algo-autotune/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestScaleCommand(t *testing.T) {
	out, err := execute(t, "scale", "D:maj")
	if err != nil {
		t.Fatalf("scale error = %v", err)
	}

	if !strings.HasPrefix(out, "Scale: D:maj\n") {
		t.Fatalf("output = %q", out)
	}
	for _, note := range []string{"C#", "D", "E", "F#", "G", "A", "B"} {
		if !strings.Contains(out, " "+note+" ") {
			t.Fatalf("output missing %s:\n%s", note, out)
		}
	}
	if strings.Contains(out, " F ") || strings.Contains(out, " C ") {
		t.Fatalf("output has notes outside D major:\n%s", out)
	}

	if _, err := execute(t, "scale", "Q:maj"); err == nil {
		t.Fatal("expected error for invalid scale")
	}
	if _, err := execute(t, "scale"); err == nil {
		t.Fatal("expected error without a scale name")
	}
}

func TestScaleList(t *testing.T) {
	out, err := execute(t, "scale", "--list")
	if err != nil {
		t.Fatal(err)
	}
	for _, mode := range []string{"maj", "min", "dor", "harm", "chrom"} {
		if !strings.Contains(out, mode+"\n") {
			t.Fatalf("mode list missing %s:\n%s", mode, out)
		}
	}
}

func TestTuneCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	report := filepath.Join(dir, "pitch.yaml")

	const sr = 22050
	buf, err := audiofile.NewBuffer(sr, testutil.Tone(225, sr, 0.5, sr/2))
	if err != nil {
		t.Fatal(err)
	}
	if err := audiofile.Save(in, buf); err != nil {
		t.Fatal(err)
	}

	_, err = execute(t, "--log-level", "error",
		"tune", "--method", "closest", "--report", report, in, out)
	if err != nil {
		t.Fatalf("tune error = %v", err)
	}

	got, err := audiofile.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != buf.Len() || got.SampleRate != sr {
		t.Fatalf("output %d frames at %d Hz, want %d at %d", got.Len(), got.SampleRate, buf.Len(), sr)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatal(err)
	}
	var r autotune.Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		t.Fatal(err)
	}
	if r.Method != "closest" || r.VoicedFrames == 0 {
		t.Fatalf("report = method %q, %d voiced frames", r.Method, r.VoicedFrames)
	}
}

func TestTuneCommandErrors(t *testing.T) {
	if _, err := execute(t, "tune", "only-one.wav"); err == nil {
		t.Fatal("expected argument count error")
	}

	dir := t.TempDir()
	if _, err := execute(t, "--log-level", "error", "tune", "--method", "psola",
		filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.wav")); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if _, err := execute(t, "--log-format", "xml", "tune",
		filepath.Join(dir, "a.wav"), filepath.Join(dir, "b.wav")); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}

func TestTuneOptionsConfig(t *testing.T) {
	opts := &tuneOptions{method: "scale", scale: "A:min", fmin: "A2", fmax: "A5", frame: 1024, hop: 256}

	cfg, err := opts.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Method != autotune.MethodScale || cfg.Scale != "A:min" {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.Detection.MinFrequency != 110 || cfg.Detection.MaxFrequency != 880 {
		t.Fatalf("range = [%g, %g]", cfg.Detection.MinFrequency, cfg.Detection.MaxFrequency)
	}

	opts.fmin = "X9"
	if _, err := opts.config(); err == nil {
		t.Fatal("expected error for bad note")
	}
}

func TestRunMissingConfig(t *testing.T) {
	if _, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatal("expected error for missing config")
	}
}
