package tuning

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrInvalidScale is returned when a scale name or definition cannot be
// turned into a non-empty set of pitch classes.
var ErrInvalidScale = errors.New("tuning: invalid scale")

// Mode identifies the interval pattern of a scale.
type Mode int

const (
	ModeMajor Mode = iota
	ModeDorian
	ModePhrygian
	ModeLydian
	ModeMixolydian
	ModeMinor
	ModeLocrian
	ModeHarmonicMinor
	ModeChromatic
)

var modeIntervals = map[Mode][]int{
	ModeMajor:         {0, 2, 4, 5, 7, 9, 11},
	ModeDorian:        {0, 2, 3, 5, 7, 9, 10},
	ModePhrygian:      {0, 1, 3, 5, 7, 8, 10},
	ModeLydian:        {0, 2, 4, 6, 7, 9, 11},
	ModeMixolydian:    {0, 2, 4, 5, 7, 9, 10},
	ModeMinor:         {0, 2, 3, 5, 7, 8, 10},
	ModeLocrian:       {0, 1, 3, 5, 6, 8, 10},
	ModeHarmonicMinor: {0, 2, 3, 5, 7, 8, 11},
	ModeChromatic:     {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var modeShortNames = map[Mode]string{
	ModeMajor:         "maj",
	ModeDorian:        "dor",
	ModePhrygian:      "phr",
	ModeLydian:        "lyd",
	ModeMixolydian:    "mix",
	ModeMinor:         "min",
	ModeLocrian:       "loc",
	ModeHarmonicMinor: "harm",
	ModeChromatic:     "chrom",
}

var modeAliases = map[string]Mode{
	"":               ModeMajor,
	"maj":            ModeMajor,
	"major":          ModeMajor,
	"ion":            ModeMajor,
	"ionian":         ModeMajor,
	"dor":            ModeDorian,
	"dorian":         ModeDorian,
	"phr":            ModePhrygian,
	"phrygian":       ModePhrygian,
	"lyd":            ModeLydian,
	"lydian":         ModeLydian,
	"mix":            ModeMixolydian,
	"mixolydian":     ModeMixolydian,
	"min":            ModeMinor,
	"minor":          ModeMinor,
	"aeo":            ModeMinor,
	"aeolian":        ModeMinor,
	"loc":            ModeLocrian,
	"locrian":        ModeLocrian,
	"harm":           ModeHarmonicMinor,
	"harmonic":       ModeHarmonicMinor,
	"harmonic minor": ModeHarmonicMinor,
	"chrom":          ModeChromatic,
	"chromatic":      ModeChromatic,
}

// Modes returns all supported modes in declaration order.
func Modes() []Mode {
	return []Mode{
		ModeMajor, ModeDorian, ModePhrygian, ModeLydian, ModeMixolydian,
		ModeMinor, ModeLocrian, ModeHarmonicMinor, ModeChromatic,
	}
}

// ParseMode resolves a mode name or abbreviation, case-insensitively.
// The empty string means major.
func ParseMode(name string) (Mode, error) {
	key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	m, ok := modeAliases[key]
	if !ok {
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidScale, name)
	}
	return m, nil
}

func (m Mode) String() string {
	if s, ok := modeShortNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Scale is an immutable set of legal pitch classes.
//
// Its degrees are the absolute pitch classes (semitones above C) sorted in
// ascending order, followed by the lowest degree one octave up. The extra
// entry lets a nearest-degree search wrap across the octave boundary.
//
// Degrees are deliberately not listed tonic first with only the tonic
// repeated an octave up. That layout gives no wrap candidate for the lowest
// pitch class when the tonic is not C: in F major, MIDI 71.6 would snap down
// to B flat (70) instead of up to C (72). Sorted degrees always pick the
// nearer tone.
type Scale struct {
	tonic   int
	mode    Mode
	degrees []float64
}

// NewScale builds the scale of mode rooted on tonic (0 = C ... 11 = B).
func NewScale(tonic int, mode Mode) (*Scale, error) {
	if tonic < 0 || tonic >= SemitonesPerOctave {
		return nil, fmt.Errorf("%w: tonic must be in [0, 11]: %d", ErrInvalidScale, tonic)
	}
	intervals, ok := modeIntervals[mode]
	if !ok || len(intervals) == 0 {
		return nil, fmt.Errorf("%w: unknown mode %d", ErrInvalidScale, int(mode))
	}

	pcs := make([]int, len(intervals))
	for i, iv := range intervals {
		pcs[i] = (tonic + iv) % SemitonesPerOctave
	}
	slices.Sort(pcs)
	pcs = slices.Compact(pcs)

	degrees := make([]float64, 0, len(pcs)+1)
	for _, pc := range pcs {
		degrees = append(degrees, float64(pc))
	}
	degrees = append(degrees, degrees[0]+SemitonesPerOctave)

	return &Scale{tonic: tonic, mode: mode, degrees: degrees}, nil
}

// ParseScale parses "tonic:mode" ("C:maj", "F#:min", "Eb:dor") or
// "tonic mode" ("Bb minor"). A bare tonic means major.
func ParseScale(name string) (*Scale, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidScale)
	}

	var tonicPart, modePart string
	if i := strings.IndexByte(s, ':'); i >= 0 {
		tonicPart, modePart = s[:i], s[i+1:]
	} else if i := strings.IndexFunc(s, isSpace); i >= 0 {
		tonicPart, modePart = s[:i], s[i+1:]
	} else {
		tonicPart = s
	}

	tonic, rest, err := parsePitchClass(strings.TrimSpace(tonicPart))
	if err != nil || rest != "" {
		return nil, fmt.Errorf("%w: bad tonic in %q", ErrInvalidScale, name)
	}
	mode, err := ParseMode(modePart)
	if err != nil {
		return nil, fmt.Errorf("%w (in %q)", err, name)
	}
	return NewScale(tonic, mode)
}

// MustParseScale is like [ParseScale] but panics on error.
func MustParseScale(name string) *Scale {
	s, err := ParseScale(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Tonic returns the tonic pitch class.
func (s *Scale) Tonic() int { return s.tonic }

// Mode returns the scale mode.
func (s *Scale) Mode() Mode { return s.mode }

// Degrees returns a copy of the extended degree set.
func (s *Scale) Degrees() []float64 { return slices.Clone(s.degrees) }

// PitchClasses returns the distinct pitch classes of the scale, ascending.
func (s *Scale) PitchClasses() []int {
	out := make([]int, len(s.degrees)-1)
	for i := range out {
		out[i] = int(s.degrees[i])
	}
	return out
}

// Name returns the canonical "tonic:mode" name, e.g. "C#:min".
func (s *Scale) Name() string {
	return PitchClassName(s.tonic) + ":" + s.mode.String()
}

func (s *Scale) String() string { return s.Name() }

// Contains reports whether the pitch class pc (any real number, taken
// modulo 12) lies within tol semitones of a scale degree.
func (s *Scale) Contains(pc, tol float64) bool {
	pc = PitchClass(pc)
	for _, d := range s.degrees {
		diff := math.Abs(pc - d)
		if diff > SemitonesPerOctave/2 {
			diff = SemitonesPerOctave - diff
		}
		if diff <= tol {
			return true
		}
	}
	return false
}

// NearestMIDI snaps a fractional MIDI note to the closest scale degree in
// the same octave region. On ties the lowest degree wins.
func (s *Scale) NearestMIDI(midi float64) float64 {
	degree := PitchClass(midi)

	best := 0
	bestDist := math.Abs(s.degrees[0] - degree)
	for i := 1; i < len(s.degrees); i++ {
		if d := math.Abs(s.degrees[i] - degree); d < bestDist {
			best, bestDist = i, d
		}
	}
	return midi - (degree - s.degrees[best])
}

// Nearest returns the scale tone closest to p. Unvoiced input is returned
// unchanged.
func (s *Scale) Nearest(p Pitch) Pitch {
	midi, ok := p.MIDI()
	if !ok {
		return Unvoiced
	}
	return Voiced(MIDIToHz(s.NearestMIDI(midi)))
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' }
