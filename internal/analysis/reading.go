// SPDX-License-Identifier: MIT
package analysis

import "tuner/pkg/notes"

// Reading is a display-ready pitch reading: the raw detection joined with
// its nearest equal-temperament note. Transports serialize it as-is.
type Reading struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
	Valid      bool    `json:"valid"`

	Midi   int     `json:"midi"`
	Note   string  `json:"note"`
	Octave int     `json:"octave"`
	Cents  float64 `json:"cents"`
}

// ReadingSource joins a ResultProvider with note math so display and
// transport consumers share one conversion path.
type ReadingSource struct {
	provider ResultProvider
	calc     *notes.Calculator
}

// NewReadingSource creates a reading source over the given provider and
// calculator. The calculator's A4 reference may be adjusted at runtime by
// the config layer.
func NewReadingSource(provider ResultProvider, calc *notes.Calculator) *ReadingSource {
	return &ReadingSource{provider: provider, calc: calc}
}

// Latest returns the most recent reading. When the detection is invalid
// the note fields are zero and ok is false; callers display a dash.
func (s *ReadingSource) Latest() (Reading, bool) {
	frequency, confidence, ok := s.provider.ReadLatest()
	if !ok || frequency <= 0 {
		return Reading{}, false
	}

	midi := s.calc.FrequencyToMidi(frequency)
	reading := Reading{
		Frequency:  frequency,
		Confidence: confidence,
		Valid:      true,
		Midi:       midi,
		Cents:      s.calc.Cents(frequency, midi),
	}
	if midi >= 0 {
		reading.Note = s.calc.NoteName(midi)
		reading.Octave = s.calc.Octave(midi)
	}

	return reading, true
}

// Calculator returns the note calculator, for reference-pitch adjustment.
func (s *ReadingSource) Calculator() *notes.Calculator {
	return s.calc
}
