// SPDX-License-Identifier: MIT
/*
Package notes provides equal-temperament pitch math for the tuner:
MIDI note <-> frequency conversion, cents deviation, and note naming
under a configurable A4 reference.

Design Principles:
- Pure math, no state beyond the A4 reference
- Zero allocations on every conversion
- No validation: callers (the config layer) clamp inputs
*/
package notes

import "math"

const (
	midiNoteA4     = 69
	notesPerOctave = 12
	centsPerOctave = 1200.0

	// DefaultReferenceA4 is the standard concert pitch in Hz.
	DefaultReferenceA4 = 440.0
)

// noteNames indexed by midi % 12. Index 0 is C.
var noteNames = [notesPerOctave]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

// Calculator converts between MIDI notes, frequencies and cents relative
// to its A4 reference frequency.
type Calculator struct {
	referenceA4 float64
}

// NewCalculator returns a Calculator tuned to standard pitch (A4 = 440 Hz).
func NewCalculator() *Calculator {
	return &Calculator{referenceA4: DefaultReferenceA4}
}

// NewCalculatorWithReference returns a Calculator with a custom A4 reference.
// The value is stored as given; range enforcement lives in the config layer.
func NewCalculatorWithReference(referenceA4 float64) *Calculator {
	return &Calculator{referenceA4: referenceA4}
}

// MidiToFrequency returns the frequency in Hz of a MIDI note:
// f(n) = fA4 * 2^((n-69)/12).
func (c *Calculator) MidiToFrequency(midiNote int) float64 {
	return c.referenceA4 * math.Pow(2.0, float64(midiNote-midiNoteA4)/notesPerOctave)
}

// FrequencyToMidi returns the nearest MIDI note for a frequency:
// n = round(69 + 12*log2(f/fA4)). The result is undefined for f <= 0;
// callers must validate.
func (c *Calculator) FrequencyToMidi(frequency float64) int {
	return int(math.Round(midiNoteA4 + notesPerOctave*math.Log2(frequency/c.referenceA4)))
}

// Cents returns the deviation of frequency from the given MIDI note in
// cents. Positive means sharp, negative means flat.
func (c *Calculator) Cents(frequency float64, midiNote int) float64 {
	return centsPerOctave * math.Log2(frequency/c.MidiToFrequency(midiNote))
}

// NoteName returns the pitch-class name of a MIDI note ("C" through "B").
// Negative MIDI numbers must be handled by the caller.
func (c *Calculator) NoteName(midiNote int) string {
	return noteNames[midiNote%notesPerOctave]
}

// Octave returns the scientific-pitch octave of a MIDI note.
// MIDI 60 (middle C) is octave 4.
func (c *Calculator) Octave(midiNote int) int {
	return midiNote/notesPerOctave - 1
}

// SetReferenceA4 changes the A4 reference frequency. No validation.
func (c *Calculator) SetReferenceA4(frequency float64) {
	c.referenceA4 = frequency
}

// ReferenceA4 returns the current A4 reference frequency.
func (c *Calculator) ReferenceA4() float64 {
	return c.referenceA4
}
