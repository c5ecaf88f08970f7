package audiofile

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-autotune/internal/testutil"
)

func TestNewBufferValidation(t *testing.T) {
	if _, err := NewBuffer(0, []float64{0}); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewBuffer(44100); err == nil {
		t.Fatal("expected error for no channels")
	}
	if _, err := NewBuffer(44100, []float64{0, 1}, []float64{0}); err == nil {
		t.Fatal("expected error for ragged channels")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	left := testutil.Tone(440, 8000, 0.5, 800)
	right := testutil.Noise(1, 0.25, 800)

	b, err := NewBuffer(8000, left, right)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	if err := Save(path, b); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got.SampleRate != 8000 || got.NumChannels() != 2 || got.Len() != 800 {
		t.Fatalf("got %d Hz, %d channels, %d frames", got.SampleRate, got.NumChannels(), got.Len())
	}

	const quantum = 1.0 / 32768
	testutil.RequireSliceNearlyEqual(t, got.Channels[0], left, quantum)
	testutil.RequireSliceNearlyEqual(t, got.Channels[1], right, quantum)
}

func TestSaveClips(t *testing.T) {
	b, err := NewBuffer(8000, []float64{2, -2, 0.5})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := Save(path, b); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, got.Channels[0], []float64{32767.0 / 32768, -1, 0.5}, 1e-12)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("Load() error = %v, want ErrInvalidFile", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMono(t *testing.T) {
	b, err := NewBuffer(8000, []float64{1, 0, -1}, []float64{0, 1, -1})
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, b.Mono(), []float64{0.5, 0.5, -1}, 1e-15)

	if d := b.Duration(); d != 3.0/8000 {
		t.Fatalf("Duration() = %g", d)
	}
}

func TestResampleSameRateCopies(t *testing.T) {
	in := []float64{0.1, 0.2, 0.3}
	b, err := NewBuffer(44100, in)
	if err != nil {
		t.Fatal(err)
	}

	out, err := b.Resample(44100)
	if err != nil {
		t.Fatal(err)
	}

	out.Channels[0][0] = 9
	if in[0] != 0.1 {
		t.Fatal("Resample at the same rate aliases the input")
	}
}

func TestResampleLength(t *testing.T) {
	tone := testutil.Tone(440, 22050, 0.5, 22050)
	b, err := NewBuffer(22050, tone)
	if err != nil {
		t.Fatal(err)
	}

	out, err := b.Resample(44100)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}

	if out.SampleRate != 44100 || out.Len() != 44100 {
		t.Fatalf("got %d Hz, %d frames, want 44100 Hz, 44100 frames", out.SampleRate, out.Len())
	}
	testutil.RequireFinite(t, out.Channels[0])

	if _, err := b.Resample(0); err == nil {
		t.Fatal("expected error for zero target rate")
	}
}

func TestResampleKeepsTail(t *testing.T) {
	const amp = 0.5
	b, err := NewBuffer(22050, testutil.Tone(220, 22050, amp, 22050))
	if err != nil {
		t.Fatal(err)
	}

	out, err := b.Resample(44100)
	if err != nil {
		t.Fatal(err)
	}

	ch := out.Channels[0]
	tail := ch[len(ch)-64:]
	rms := math.Sqrt(floats.Dot(tail, tail) / float64(len(tail)))
	if want := 0.5 * amp / math.Sqrt2; rms < want {
		t.Fatalf("RMS of last 64 samples = %.3f, want >= %.3f", rms, want)
	}
}

func TestResampleKeepsImpulsePosition(t *testing.T) {
	tests := []struct {
		name    string
		in, out int
		at      int
	}{
		{name: "up near start", in: 22050, out: 44100, at: 100},
		{name: "up near end", in: 22050, out: 44100, at: 22050 - 100},
		{name: "down", in: 48000, out: 44100, at: 24000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := make([]float64, tt.in)
			x[tt.at] = 1
			b, err := NewBuffer(tt.in, x)
			if err != nil {
				t.Fatal(err)
			}

			out, err := b.Resample(tt.out)
			if err != nil {
				t.Fatal(err)
			}

			want := int(math.Round(float64(tt.at) * float64(tt.out) / float64(tt.in)))
			got := floats.MaxIdx(out.Channels[0])
			if got < want-2 || got > want+2 {
				t.Fatalf("impulse peak at %d, want %d +- 2", got, want)
			}
		})
	}
}

func TestSegment(t *testing.T) {
	x := []float64{1, 2, 3}
	tests := []struct {
		name     string
		start, n int
		want     []float64
	}{
		{name: "inside", start: 1, n: 2, want: []float64{2, 3}},
		{name: "past end", start: 2, n: 3, want: []float64{3, 0, 0}},
		{name: "before start", start: -1, n: 3, want: []float64{0, 1, 2}},
		{name: "outside", start: 5, n: 2, want: []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.RequireSliceNearlyEqual(t, segment(x, tt.start, tt.n), tt.want, 0)
		})
	}
}
