// SPDX-License-Identifier: MIT
package analysis

import "math"

// ToneGenerator synthesizes a sine wave with a phase accumulator. The
// frequency is settable from any thread; Generate runs on the audio output
// callback and is allocation-free. The phase carries across calls so
// frequency changes do not click.
type ToneGenerator struct {
	frequency atomicFloat64
	phase     float64
}

// NewToneGenerator returns a generator at the given initial frequency.
func NewToneGenerator(frequency float64) *ToneGenerator {
	g := &ToneGenerator{}
	g.frequency.Store(frequency)
	return g
}

// SetFrequency changes the synthesized frequency in Hz.
func (g *ToneGenerator) SetFrequency(frequency float64) {
	g.frequency.Store(frequency)
}

// Frequency returns the current synthesized frequency in Hz.
func (g *ToneGenerator) Frequency() float64 {
	return g.frequency.Load()
}

// Generate fills out with sine samples at the configured frequency.
// Output callback thread only.
func (g *ToneGenerator) Generate(out []float32, sampleRate float64) {
	increment := 2.0 * math.Pi * g.frequency.Load() / sampleRate
	phase := g.phase

	for i := range out {
		out[i] = float32(math.Sin(phase))
		phase += increment
		if phase >= 2.0*math.Pi {
			phase -= 2.0 * math.Pi
		}
	}

	g.phase = phase
}
