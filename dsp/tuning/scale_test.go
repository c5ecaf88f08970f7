package tuning

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"
)

func TestParseScale(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "C major colon", input: "C:maj", want: []int{0, 2, 4, 5, 7, 9, 11}},
		{name: "A minor colon", input: "A:min", want: []int{0, 2, 4, 5, 7, 9, 11}},
		{name: "F sharp minor", input: "F#:min", want: []int{1, 2, 4, 6, 8, 9, 11}},
		{name: "B flat spelled out", input: "Bb minor", want: []int{0, 1, 3, 5, 6, 8, 10}},
		{name: "lower case tonic", input: "d dorian", want: []int{0, 2, 4, 5, 7, 9, 11}},
		{name: "bare tonic is major", input: "G", want: []int{0, 2, 4, 6, 7, 9, 11}},
		{name: "harmonic minor", input: "A harmonic minor", want: []int{0, 2, 4, 5, 8, 9, 11}},
		{name: "unicode flat", input: "E♭:maj", want: []int{0, 2, 3, 5, 7, 8, 10}},
		{name: "chromatic", input: "C:chrom", want: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{name: "empty", input: "", wantErr: true},
		{name: "bad tonic", input: "H:maj", wantErr: true},
		{name: "trailing tonic garbage", input: "Cx:maj", wantErr: true},
		{name: "bad mode", input: "C:blues", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScale(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScale(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidScale) {
					t.Fatalf("ParseScale(%q) error = %v, want ErrInvalidScale", tt.input, err)
				}
				return
			}
			if got := s.PitchClasses(); !slices.Equal(got, tt.want) {
				t.Fatalf("PitchClasses() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScaleDegreesAppendOctaveOfLowestDegree(t *testing.T) {
	s := MustParseScale("A:min")
	deg := s.Degrees()
	if len(deg) != 8 {
		t.Fatalf("len(Degrees()) = %d, want 8", len(deg))
	}
	if deg[len(deg)-1] != deg[0]+12 {
		t.Fatalf("last degree = %v, want %v", deg[len(deg)-1], deg[0]+12)
	}
	if !slices.IsSorted(deg) {
		t.Fatalf("degrees not ascending: %v", deg)
	}

	deg[0] = 99
	if s.Degrees()[0] == 99 {
		t.Fatalf("Degrees() must return a copy")
	}
}

func TestNewScaleRejectsInvalidInput(t *testing.T) {
	if _, err := NewScale(12, ModeMajor); !errors.Is(err, ErrInvalidScale) {
		t.Fatalf("NewScale(12) error = %v, want ErrInvalidScale", err)
	}
	if _, err := NewScale(-1, ModeMajor); !errors.Is(err, ErrInvalidScale) {
		t.Fatalf("NewScale(-1) error = %v, want ErrInvalidScale", err)
	}
	if _, err := NewScale(0, Mode(42)); !errors.Is(err, ErrInvalidScale) {
		t.Fatalf("NewScale(mode 42) error = %v, want ErrInvalidScale", err)
	}
}

func TestScaleNearestMIDI(t *testing.T) {
	cMajor := MustParseScale("C:maj")
	aMinor := MustParseScale("A:min")
	dMajor := MustParseScale("D:maj")
	fMajor := MustParseScale("F:maj")

	tests := []struct {
		name  string
		scale *Scale
		midi  float64
		want  float64
	}{
		{name: "in scale unchanged", scale: cMajor, midi: 64, want: 64},
		{name: "slightly sharp A", scale: cMajor, midi: 69.3, want: 69},
		{name: "slightly flat A", scale: cMajor, midi: 68.7, want: 69},
		{name: "tie D# resolves down to D", scale: cMajor, midi: 63, want: 62},
		{name: "tie between B and C resolves down", scale: cMajor, midi: 71.5, want: 71},
		{name: "just above tie goes to C", scale: cMajor, midi: 71.6, want: 72},
		{name: "wrap to next octave", scale: aMinor, midi: 59.8, want: 60},
		{name: "C# in D major stays", scale: dMajor, midi: 61, want: 61},
		{name: "C in D major snaps up to C#", scale: dMajor, midi: 60, want: 61},
		{name: "negative midi", scale: cMajor, midi: -0.6, want: -1},
		{name: "F major wraps up to C above B flat", scale: fMajor, midi: 71.6, want: 72},
		{name: "F major B flat stays", scale: fMajor, midi: 70.2, want: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.scale.NearestMIDI(tt.midi)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("NearestMIDI(%v) = %v, want %v", tt.midi, got, tt.want)
			}
		})
	}
}

func TestScaleNearestKeepsUnvoiced(t *testing.T) {
	s := MustParseScale("C:maj")
	if got := s.Nearest(Unvoiced); got.IsVoiced() {
		t.Fatalf("Nearest(Unvoiced) = %v, want unvoiced", got)
	}
}

func TestScaleNearestOutputsScaleTones(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, mode := range Modes() {
		for tonic := range SemitonesPerOctave {
			s, err := NewScale(tonic, mode)
			if err != nil {
				t.Fatalf("NewScale(%d, %v) error = %v", tonic, mode, err)
			}
			for range 200 {
				hz := 60 + rng.Float64()*2000
				got := s.Nearest(Voiced(hz))
				midi, ok := got.MIDI()
				if !ok {
					t.Fatalf("%s: Nearest(%v) returned unvoiced", s, hz)
				}
				if !s.Contains(midi, 1e-6) {
					t.Fatalf("%s: Nearest(%v Hz) pitch class %v not in scale", s, hz, PitchClass(midi))
				}
				if math.Abs(HzToMIDI(hz)-midi) > 2+1e-9 {
					t.Fatalf("%s: Nearest(%v Hz) moved more than a whole tone", s, hz)
				}
			}
		}
	}
}

func TestScaleNearestIsIdempotentOnScaleTones(t *testing.T) {
	s := MustParseScale("E:min")
	for midi := 40; midi < 90; midi++ {
		p := Voiced(MIDIToHz(float64(midi)))
		once := s.Nearest(p)
		twice := s.Nearest(once)
		if !once.Equal(twice, 1e-9) {
			t.Fatalf("midi %d: Nearest not idempotent: %v then %v", midi, once, twice)
		}
	}
}

func TestScaleContainsWrapsAroundOctave(t *testing.T) {
	s := MustParseScale("C:maj")
	tests := []struct {
		pc   float64
		want bool
	}{
		{0, true},
		{11.9999999, true},
		{12.0000001, true},
		{1, false},
		{6, false},
		{-1, true},
		{25, false},
	}
	for _, tt := range tests {
		if got := s.Contains(tt.pc, 1e-6); got != tt.want {
			t.Fatalf("Contains(%v) = %v, want %v", tt.pc, got, tt.want)
		}
	}
}

func TestScaleName(t *testing.T) {
	if got := MustParseScale("Db minor").Name(); got != "C#:min" {
		t.Fatalf("Name() = %q, want %q", got, "C#:min")
	}
	if got := MustParseScale("g:mixolydian").String(); got != "G:mix" {
		t.Fatalf("String() = %q, want %q", got, "G:mix")
	}
}
