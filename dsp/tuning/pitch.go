package tuning

import (
	"fmt"
	"math"
)

const (
	// SemitonesPerOctave is the number of equal-tempered pitch classes.
	SemitonesPerOctave = 12

	referenceA4Hz   = 440.0
	referenceA4MIDI = 69.0
)

// Pitch is the fundamental frequency of one analysis frame, or the absence
// of one. The zero value is [Unvoiced].
type Pitch struct {
	hz     float64
	voiced bool
}

// Unvoiced is the pitch of a frame without a periodic component.
var Unvoiced = Pitch{}

// Voiced returns a voiced pitch at hz. Non-finite or non-positive
// frequencies cannot be voiced and yield [Unvoiced].
func Voiced(hz float64) Pitch {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return Unvoiced
	}
	return Pitch{hz: hz, voiced: true}
}

// Hz returns the frequency and whether the pitch is voiced.
func (p Pitch) Hz() (float64, bool) { return p.hz, p.voiced }

// IsVoiced reports whether p carries a frequency.
func (p Pitch) IsVoiced() bool { return p.voiced }

// MIDI returns the fractional MIDI note number of a voiced pitch.
func (p Pitch) MIDI() (float64, bool) {
	if !p.voiced {
		return 0, false
	}
	return HzToMIDI(p.hz), true
}

// Equal reports whether p and q are both unvoiced, or both voiced with
// frequencies closer than tolHz.
func (p Pitch) Equal(q Pitch, tolHz float64) bool {
	if p.voiced != q.voiced {
		return false
	}
	return !p.voiced || math.Abs(p.hz-q.hz) <= tolHz
}

func (p Pitch) String() string {
	if !p.voiced {
		return "unvoiced"
	}
	return fmt.Sprintf("%.3f Hz", p.hz)
}

// HzToMIDI converts a frequency to a fractional MIDI note number
// (A4 = 440 Hz = 69).
func HzToMIDI(hz float64) float64 {
	return SemitonesPerOctave*math.Log2(hz/referenceA4Hz) + referenceA4MIDI
}

// MIDIToHz converts a fractional MIDI note number to a frequency.
func MIDIToHz(midi float64) float64 {
	return referenceA4Hz * math.Exp2((midi-referenceA4MIDI)/SemitonesPerOctave)
}

// PitchClass returns the position of a fractional MIDI note inside its
// octave, in [0, 12).
func PitchClass(midi float64) float64 {
	pc := math.Mod(midi, SemitonesPerOctave)
	if pc < 0 {
		pc += SemitonesPerOctave
	}
	// math.Mod of a tiny negative value can round back up to 12.
	if pc >= SemitonesPerOctave {
		pc = 0
	}
	return pc
}
