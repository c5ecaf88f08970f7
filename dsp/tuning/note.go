package tuning

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrInvalidNote is returned for note names that cannot be parsed.
var ErrInvalidNote = errors.New("tuning: invalid note name")

var letterPitchClass = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var sharpNames = [SemitonesPerOctave]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// NoteToMIDI parses a scientific pitch name such as "A4", "C#3" or "Bb-1"
// into its MIDI note number.
func NoteToMIDI(name string) (float64, error) {
	pc, rest, err := parsePitchClass(strings.TrimSpace(name))
	if err != nil {
		return 0, err
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q has no octave", ErrInvalidNote, name)
	}
	return float64((octave+1)*SemitonesPerOctave + pc), nil
}

// NoteToHz parses a scientific pitch name and returns its frequency.
func NoteToHz(name string) (float64, error) {
	midi, err := NoteToMIDI(name)
	if err != nil {
		return 0, err
	}
	return MIDIToHz(midi), nil
}

// MustNoteToHz is like [NoteToHz] but panics on invalid input. It is meant
// for package-level defaults.
func MustNoteToHz(name string) float64 {
	hz, err := NoteToHz(name)
	if err != nil {
		panic(err)
	}
	return hz
}

// PitchClassName returns the sharp spelling of a pitch class in 0..11.
func PitchClassName(pc int) string {
	pc %= SemitonesPerOctave
	if pc < 0 {
		pc += SemitonesPerOctave
	}
	return sharpNames[pc]
}

// NoteName returns the scientific pitch name of a MIDI note, using sharps.
func NoteName(midi int) string {
	octave := midi / SemitonesPerOctave
	if midi < 0 && midi%SemitonesPerOctave != 0 {
		octave--
	}
	return PitchClassName(midi) + strconv.Itoa(octave-1)
}

// parsePitchClass reads a note letter and its accidentals from the front
// of s and returns the pitch class together with the unparsed remainder.
func parsePitchClass(s string) (int, string, error) {
	if s == "" {
		return 0, "", fmt.Errorf("%w: empty", ErrInvalidNote)
	}
	letter := s[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	pc, ok := letterPitchClass[letter]
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidNote, s)
	}

	rest := s[1:]
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		switch r {
		case '#', '♯':
			pc++
		case 'b', '♭':
			pc--
		default:
			return normalizePitchClass(pc), rest, nil
		}
		rest = rest[size:]
	}
	return normalizePitchClass(pc), "", nil
}

func normalizePitchClass(pc int) int {
	pc %= SemitonesPerOctave
	if pc < 0 {
		pc += SemitonesPerOctave
	}
	return pc
}
