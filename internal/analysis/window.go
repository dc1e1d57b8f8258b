// SPDX-License-Identifier: MIT
package analysis

import "gonum.org/v1/gonum/dsp/window"

// WindowFunc selects the analysis window applied before NSDF computation.
type WindowFunc int

// Available window functions. Rectangular is the default: the NSDF
// normalization already compensates for the shrinking overlap at high
// lags, so tapering mostly costs low-frequency resolution.
const (
	Rectangular WindowFunc = iota
	Hann
	Hamming
)

// String returns the window name for logging.
func (w WindowFunc) String() string {
	switch w {
	case Rectangular:
		return "Rectangular"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	default:
		return "Unknown"
	}
}

// fillWindow writes the selected window coefficients into coeffs in place.
// The slice is reset to all ones first because the gonum window functions
// multiply into their argument.
func fillWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	default:
		// Rectangular: all ones.
	}
}
