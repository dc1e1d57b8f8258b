// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"sync/atomic"
)

// resultSlot is a single-producer / single-consumer handoff of the latest
// detection result. Three independent atomics: the writer stores frequency,
// then confidence, then the valid flag; the reader loads the flag first.
// A reader may briefly observe valid=true with values from the previous
// publication. That tearing is bounded to one update and imperceptible at
// display rates, so no seqlock is used.
type resultSlot struct {
	freq  atomic.Uint64 // math.Float64bits
	conf  atomic.Uint64 // math.Float64bits
	valid atomic.Bool
}

// publish stores a new result. Producer side only.
func (s *resultSlot) publish(frequency, confidence float64, valid bool) {
	s.freq.Store(math.Float64bits(frequency))
	s.conf.Store(math.Float64bits(confidence))
	s.valid.Store(valid)
}

// load returns the latest published result. Consumer side only. When the
// valid flag is false the frequency and confidence are not read.
func (s *resultSlot) load() (frequency, confidence float64, valid bool) {
	if !s.valid.Load() {
		return 0, 0, false
	}
	return math.Float64frombits(s.freq.Load()), math.Float64frombits(s.conf.Load()), true
}

// atomicFloat64 is a float64 with atomic store/load, used for configuration
// scalars written from the consumer side and read on the hot path.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (f *atomicFloat64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *atomicFloat64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}
