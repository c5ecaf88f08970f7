package delay

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}

	tests := []struct {
		name       string
		seconds    float64
		sampleRate float64
		wantLen    int
		wantErr    bool
	}{
		{name: "half second 44100", seconds: 0.5, sampleRate: 44100, wantLen: 22050},
		{name: "tiny rounds up to one", seconds: 1e-6, sampleRate: 8000, wantLen: 1},
		{name: "zero seconds", seconds: 0, sampleRate: 44100, wantErr: true},
		{name: "NaN seconds", seconds: math.NaN(), sampleRate: 44100, wantErr: true},
		{name: "zero rate", seconds: 0.5, sampleRate: 0, wantErr: true},
		{name: "+Inf rate", seconds: 0.5, sampleRate: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewSeconds(tt.seconds, tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSeconds() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && d.Len() != tt.wantLen {
				t.Fatalf("Len() = %d, want %d", d.Len(), tt.wantLen)
			}
		})
	}
}

func TestReadWrite(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 6; i++ {
		d.Write(float64(i))
	}

	// Holds 3, 4, 5, 6.
	for delay, want := range map[int]float64{1: 6, 2: 5, 3: 4, 4: 3, 0: 6, 9: 3} {
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d) = %v, want %v", delay, got, want)
		}
	}

	if got := d.Oldest(); got != 3 {
		t.Fatalf("Oldest() = %v, want 3", got)
	}
}

func TestFeedbackImpulse(t *testing.T) {
	d, err := New(3)
	if err != nil {
		t.Fatal(err)
	}

	var out []float64
	for i := range 10 {
		in := 0.0
		if i == 0 {
			in = 1
		}
		out = append(out, d.Feedback(in, 0.5))
	}

	want := []float64{0, 0, 0, 1, 0, 0, 0.5, 0, 0, 0.25}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-15 {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	d, err := New(2)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	if d.Read(1) != 0 || d.Read(2) != 0 {
		t.Fatal("Reset() did not clear the line")
	}
}
