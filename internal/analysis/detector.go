// SPDX-License-Identifier: MIT
/*
Package analysis implements the tuner's pitch analysis engine:

- A McLeod Pitch Method (MPM) detector that estimates the fundamental
  frequency of an analysis window via the Normalized Square Difference
  Function (NSDF) with parabolic peak refinement.
- A multi-tier dispatcher that accumulates the incoming sample stream and
  races detectors over several window lengths, shortest first.
- A lock-free result slot bridging the real-time producer and UI consumers.
- A phase-accumulating tone generator for reference playback.

Thread Safety:
- Detect and Push run on the audio callback thread: no allocation, no
  locks, no logging.
- Results cross threads through atomic publication only.
*/
package analysis

import (
	"fmt"
	"math"
)

// Detector defaults. The dB floor rejects room noise before any NSDF work;
// the frequency range spans C1 through C8.
const (
	DefaultThresholdDB  = -40.0
	DefaultMinFrequency = 32.7   // C1
	DefaultMaxFrequency = 4186.0 // C8
	DefaultBaseClarity  = 0.01

	epsilon = 1e-10
)

// DetectionResult is the outcome of a single detection pass. When Valid is
// false, Frequency and Confidence are undefined and must be ignored.
type DetectionResult struct {
	Frequency  float64
	Confidence float64
	Valid      bool
}

// invalidResult is the zero-value rejection returned on every failure path.
var invalidResult = DetectionResult{}

// Detector estimates the fundamental pitch of a sample window using the
// McLeod Pitch Method. All scratch buffers are allocated at construction;
// Detect performs no allocation and is safe on the audio callback thread.
// A Detector is not safe for concurrent use.
type Detector struct {
	sampleRate float64
	bufferSize int

	thresholdDB float64
	minFreq     float64
	maxFreq     float64
	baseClarity float64
	windowType  WindowFunc

	// Lag search range derived from the frequency limits.
	minLag int
	maxLag int

	// Scratch, sized once to the full lag capacity (bufferSize-1) so the
	// frequency setters never reallocate.
	nsdf      []float64
	autocorr  []float64
	squareSum []float64
	window    []float64
	working   []float64
}

// NewDetector creates a pitch detector for the given sample rate and
// analysis window size. All buffers are pre-allocated here.
func NewDetector(sampleRate float64, bufferSize int) (*Detector, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if bufferSize < 2 {
		return nil, fmt.Errorf("buffer size must be at least 2, got %d", bufferSize)
	}

	d := &Detector{
		sampleRate:  sampleRate,
		bufferSize:  bufferSize,
		thresholdDB: DefaultThresholdDB,
		minFreq:     DefaultMinFrequency,
		maxFreq:     DefaultMaxFrequency,
		baseClarity: DefaultBaseClarity,
		windowType:  Rectangular,

		nsdf:      make([]float64, bufferSize),
		autocorr:  make([]float64, bufferSize),
		squareSum: make([]float64, bufferSize),
		window:    make([]float64, bufferSize),
		working:   make([]float64, bufferSize),
	}

	d.updateLagRange()
	fillWindow(d.window, d.windowType)

	return d, nil
}

// updateLagRange derives the lag search bounds from the frequency limits.
// period = sampleRate / frequency, so the highest frequency fixes the
// shortest lag and the lowest frequency the longest.
func (d *Detector) updateLagRange() {
	d.minLag = int(d.sampleRate / d.maxFreq)
	if d.minLag < 1 {
		d.minLag = 1
	}
	d.maxLag = int(d.sampleRate / d.minFreq)
	if d.maxLag > d.bufferSize-1 {
		d.maxLag = d.bufferSize - 1
	}
}

// SetThresholdDB sets the RMS rejection floor in dBFS.
func (d *Detector) SetThresholdDB(thresholdDB float64) {
	d.thresholdDB = thresholdDB
}

// SetMinFrequency sets the lowest detectable frequency and recomputes the
// maximum search lag.
func (d *Detector) SetMinFrequency(minFreq float64) {
	d.minFreq = minFreq
	d.updateLagRange()
}

// SetMaxFrequency sets the highest detectable frequency and recomputes the
// minimum search lag.
func (d *Detector) SetMaxFrequency(maxFreq float64) {
	d.maxFreq = maxFreq
	d.updateLagRange()
}

// SetWindowType switches the analysis window. The coefficient table is
// recomputed in place.
func (d *Detector) SetWindowType(windowType WindowFunc) {
	d.windowType = windowType
	fillWindow(d.window, windowType)
}

// WindowType returns the currently selected analysis window.
func (d *Detector) WindowType() WindowFunc {
	return d.windowType
}

// SetBaseClarityThreshold sets the numerator of the adaptive clarity floor.
func (d *Detector) SetBaseClarityThreshold(baseClarity float64) {
	d.baseClarity = baseClarity
}

// SampleRate returns the sample rate the detector was built for.
func (d *Detector) SampleRate() float64 {
	return d.sampleRate
}

// BufferSize returns the analysis window size the detector was built for.
func (d *Detector) BufferSize() int {
	return d.bufferSize
}

// DetectPitch is the simple variant of Detect: it returns the detected
// frequency in Hz, or 0.0 when no pitch was found.
func (d *Detector) DetectPitch(samples []float32) float64 {
	return d.Detect(samples).Frequency
}

// Detect runs one MPM pass over the given samples. At most bufferSize
// samples are analyzed. The result is deterministic for identical input
// and configuration.
func (d *Detector) Detect(samples []float32) DetectionResult {
	if len(samples) == 0 {
		return invalidResult
	}

	n := len(samples)
	if n > d.bufferSize {
		n = d.bufferSize
	}

	if !d.validateSignal(samples[:n]) {
		return invalidResult
	}

	d.prepareWorking(samples[:n])
	maxLag := d.computeNSDF(n)

	peak := d.findClarityPeak(maxLag, n)
	if peak < 0 {
		return invalidResult
	}

	refined := d.parabolicInterpolation(peak, maxLag)
	frequency := d.sampleRate / refined

	confidence := d.nsdf[peak]
	if confidence > 1.0 {
		confidence = 1.0
	}

	return DetectionResult{Frequency: frequency, Confidence: confidence, Valid: true}
}

// validateSignal rejects signals whose RMS falls under the dB floor.
func (d *Detector) validateSignal(samples []float32) bool {
	var sumSquares float64
	for _, s := range samples {
		x := float64(s)
		sumSquares += x * x
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))

	thresholdLinear := math.Pow(10.0, d.thresholdDB/20.0)
	return rms >= thresholdLinear
}

// prepareWorking copies the input into the working buffer, removes the DC
// offset, and applies the analysis window.
func (d *Detector) prepareWorking(samples []float32) {
	n := len(samples)

	var sum float64
	for i := 0; i < n; i++ {
		d.working[i] = float64(samples[i])
		sum += d.working[i]
	}
	mean := sum / float64(n)

	for i := 0; i < n; i++ {
		d.working[i] = (d.working[i] - mean) * d.window[i]
	}
}

// computeNSDF fills d.nsdf for lags [0, maxLag] over the first n working
// samples and returns the effective maximum lag. NSDF(tau) = 2*r(tau)/m(tau)
// where r is the autocorrelation and m the sum of squares of both windows.
func (d *Detector) computeNSDF(n int) int {
	maxLag := d.maxLag
	if maxLag > n-1 {
		maxLag = n - 1
	}

	for lag := 0; lag <= maxLag; lag++ {
		var r, m float64
		valid := n - lag
		for i := 0; i < valid; i++ {
			x := d.working[i]
			xLag := d.working[i+lag]
			r += x * xLag
			m += x*x + xLag*xLag
		}
		d.autocorr[lag] = r
		d.squareSum[lag] = m
	}

	for lag := 0; lag <= maxLag; lag++ {
		if d.squareSum[lag] > epsilon {
			d.nsdf[lag] = 2.0 * d.autocorr[lag] / d.squareSum[lag]
		} else {
			d.nsdf[lag] = 0.0
		}
	}

	return maxLag
}

// clarityFloor is the adaptive acceptance threshold for NSDF peaks. Lower
// frequencies complete fewer cycles in a fixed window and their peaks are
// intrinsically lower, so the floor shrinks with the candidate frequency.
func (d *Detector) clarityFloor(lag int) float64 {
	freq := d.sampleRate / float64(lag)
	if freq < 1.0 {
		freq = 1.0
	}
	return d.baseClarity / math.Sqrt(freq)
}

// findClarityPeak returns the lag of the first NSDF local maximum above the
// adaptive clarity floor, per the MPM convention. First-above-threshold,
// not global maximum: the global peak on harmonic signals is often an
// octave too low or too high. Falls back to the highest NSDF value that
// still clears the floor, among lags where at least half of the n analyzed
// samples overlap; returns -1 when nothing qualifies.
func (d *Detector) findClarityPeak(maxLag, n int) int {
	startLag := d.minLag
	if startLag < 1 {
		startLag = 1
	}
	endLag := maxLag

	for lag := startLag; lag < endLag; lag++ {
		if d.nsdf[lag] > d.nsdf[lag-1] && d.nsdf[lag] > d.nsdf[lag+1] {
			if d.nsdf[lag] >= d.clarityFloor(lag) {
				return lag
			}
		}
	}

	// No qualifying local maximum (common near the buffer limit at very
	// low frequencies, where the peak is truncated by the lag range).
	// Fall back to the highest value that still clears the clarity floor,
	// restricted to lags past the first negative-going zero crossing:
	// before it the NSDF is still riding the lag-0 plateau, and a
	// fundamental below the detector's range would otherwise read as a
	// confident peak at the minimum lag. Lags past n/2 are excluded as
	// well: with only a few overlapping samples the NSDF is close to 1 for
	// any slowly varying signal, and a fundamental below the range would
	// read as a confident peak at the maximum lag.
	crossing := -1
	for lag := startLag; lag <= endLag; lag++ {
		if d.nsdf[lag] <= 0 {
			crossing = lag
			break
		}
	}
	if crossing < 0 {
		return -1
	}

	fallbackEnd := endLag
	if fallbackEnd > n/2 {
		fallbackEnd = n / 2
	}
	bestLag := -1
	bestNSDF := 0.0
	for lag := crossing; lag <= fallbackEnd; lag++ {
		if d.nsdf[lag] >= d.clarityFloor(lag) && d.nsdf[lag] > bestNSDF {
			bestNSDF = d.nsdf[lag]
			bestLag = lag
		}
	}

	return bestLag
}

// parabolicInterpolation refines the peak lag to sub-sample accuracy by
// fitting a parabola through the peak and its neighbors.
func (d *Detector) parabolicInterpolation(peak, maxLag int) float64 {
	if peak <= 0 || peak >= maxLag {
		return float64(peak)
	}

	alpha := d.nsdf[peak-1]
	beta := d.nsdf[peak]
	gamma := d.nsdf[peak+1]

	denominator := 2.0 * (alpha - 2.0*beta + gamma)
	if math.Abs(denominator) < epsilon {
		return float64(peak)
	}

	return float64(peak) + (alpha-gamma)/denominator
}
