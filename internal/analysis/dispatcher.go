// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"

	"tuner/pkg/bitint"
)

// Dispatcher defaults and tier schedule. Tiers are ordered by ascending
// window length: the fast tier resolves notes from 86 Hz (just above E2)
// upward at ~11.6 ms of signal and its NSDF pass is over 30x cheaper than
// the full window's, so most picked-note attacks never reach the expensive
// pass.
const (
	DefaultAccumulationSize = 4096

	DefaultConfidenceThreshold = 0.5

	// onsetEnergyRatio is the energy jump between consecutive blocks that
	// counts as a note attack and triggers an early detection pass.
	onsetEnergyRatio = 3.0

	fastTierSize    = 512
	fastTierHop     = 128
	fastTierMinHz   = 86.0 // ~E2
	mediumTierSize  = 1024
	mediumTierHop   = 256
	mediumTierMinHz = 43.0
	fullTierHop     = 1024
)

// DetectionTier is one latency/frequency-floor trade-off: a window length,
// the hop between scheduled passes, and the lowest resolvable frequency.
type DetectionTier struct {
	BufferSize int
	HopSize    int
	MinFreq    float64
}

// Dispatcher owns the sample accumulation ring and a detector per tier.
// Push is called from the audio callback thread and is the only mutator of
// the ring and the detector scratch. ReadLatest and the setters are called
// from the consumer side; they touch atomics only.
type Dispatcher struct {
	sampleRate float64
	ring       []float32
	ringMask   int
	writeIndex int

	tiers     []DetectionTier
	detectors []*Detector
	scratch   [][]float32 // one linearization buffer per tier

	samplesSinceDetection int
	prevEnergy            float64

	confidenceThreshold atomicFloat64
	slot                resultSlot
}

// Compile-time interface checks.
var _ SampleProcessor = (*Dispatcher)(nil)
var _ ResultProvider = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher with an accumulation ring of at least
// bufferSize samples (rounded up to a power of two) and builds the fast,
// medium and full detection tiers. bufferSize <= 0 selects the default.
func NewDispatcher(bufferSize int, sampleRate float64) (*Dispatcher, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if bufferSize <= 0 {
		bufferSize = DefaultAccumulationSize
	}
	n := bitint.NextPowerOfTwo(bufferSize)

	d := &Dispatcher{
		sampleRate: sampleRate,
		ring:       make([]float32, n),
		ringMask:   n - 1,
	}
	d.confidenceThreshold.Store(DefaultConfidenceThreshold)

	fullHop := fullTierHop
	if fullHop > n {
		fullHop = n
	}
	for _, tier := range []DetectionTier{
		{BufferSize: fastTierSize, HopSize: fastTierHop, MinFreq: fastTierMinHz},
		{BufferSize: mediumTierSize, HopSize: mediumTierHop, MinFreq: mediumTierMinHz},
		{BufferSize: n, HopSize: fullHop, MinFreq: DefaultMinFrequency},
	} {
		if tier.BufferSize > n {
			continue
		}
		det, err := NewDetector(sampleRate, tier.BufferSize)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", tier.BufferSize, err)
		}
		det.SetMinFrequency(tier.MinFreq)

		d.tiers = append(d.tiers, tier)
		d.detectors = append(d.detectors, det)
		d.scratch = append(d.scratch, make([]float32, tier.BufferSize))
	}

	return d, nil
}

// Push appends a block of samples to the accumulation ring and runs a
// detection pass when the hop schedule or an onset says so.
// Performance Critical (Hot Path):
// - No allocations, locks, or logging
// - Called exclusively from the audio callback thread
func (d *Dispatcher) Push(samples []float32) {
	if len(samples) == 0 {
		return
	}

	w := d.writeIndex
	for _, s := range samples {
		d.ring[w] = s
		w = (w + 1) & d.ringMask
	}
	d.writeIndex = w

	d.samplesSinceDetection += len(samples)

	// Crude attack detector: a 3x jump in short-window energy marks the
	// start of a note and shortens attack latency. Steady-state rate stays
	// bounded by the fast tier's hop.
	var energy float64
	for _, s := range samples {
		x := float64(s)
		energy += x * x
	}
	energy /= float64(len(samples))
	onset := energy > onsetEnergyRatio*d.prevEnergy
	d.prevEnergy = energy

	if onset || d.samplesSinceDetection >= d.tiers[0].HopSize {
		d.samplesSinceDetection = 0
		d.runDetection()
	}
}

// Process implements SampleProcessor.
func (d *Dispatcher) Process(block []float32) {
	d.Push(block)
}

// runDetection races the tiers from shortest window to longest and
// publishes the first result whose confidence clears the threshold. When
// no tier qualifies an invalid result is published so stale readings do
// not outlive the signal.
func (d *Dispatcher) runDetection() {
	threshold := d.confidenceThreshold.Load()

	for ti := range d.tiers {
		size := d.tiers[ti].BufferSize
		buf := d.scratch[ti]

		// Linearize the most recent size samples, oldest first.
		start := d.writeIndex + len(d.ring) - size
		for i := 0; i < size; i++ {
			buf[i] = d.ring[(start+i)&d.ringMask]
		}

		result := d.detectors[ti].Detect(buf)
		if result.Valid && result.Confidence >= threshold {
			d.slot.publish(result.Frequency, result.Confidence, true)
			return
		}
	}

	d.slot.publish(0, 0, false)
}

// ReadLatest returns the latest published detection. ok is false when the
// last pass found no qualifying pitch or nothing was published yet.
func (d *Dispatcher) ReadLatest() (frequency, confidence float64, ok bool) {
	return d.slot.load()
}

// SetConfidenceThreshold sets the minimum confidence a tier result needs
// to be published. The value is clamped to [0, 1].
func (d *Dispatcher) SetConfidenceThreshold(threshold float64) {
	if threshold < 0.0 {
		threshold = 0.0
	}
	if threshold > 1.0 {
		threshold = 1.0
	}
	d.confidenceThreshold.Store(threshold)
}

// ConfidenceThreshold returns the current publication threshold.
func (d *Dispatcher) ConfidenceThreshold() float64 {
	return d.confidenceThreshold.Load()
}

// SampleRate returns the sample rate the dispatcher was built for.
func (d *Dispatcher) SampleRate() float64 {
	return d.sampleRate
}

// AccumulationSize returns the ring capacity in samples.
func (d *Dispatcher) AccumulationSize() int {
	return len(d.ring)
}

// Tiers returns a copy of the detection tier schedule.
func (d *Dispatcher) Tiers() []DetectionTier {
	tiers := make([]DetectionTier, len(d.tiers))
	copy(tiers, d.tiers)
	return tiers
}

// Detector returns the detector for a tier index, for configuration from
// the cold path (window type, dB floor). Index must be in range.
func (d *Dispatcher) Detector(tier int) *Detector {
	return d.detectors[tier]
}
