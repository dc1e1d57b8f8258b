// SPDX-License-Identifier: MIT
package analysis

import (
	"math"
	"testing"

	"tuner/pkg/utils"
)

func newTestDispatcher(t *testing.T, bufferSize int, sampleRate float64) *Dispatcher {
	t.Helper()
	dispatcher, err := NewDispatcher(bufferSize, sampleRate)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return dispatcher
}

// feedBlocks pushes a signal through the dispatcher in blockSize chunks.
func feedBlocks(d *Dispatcher, signal []float32, blockSize int) {
	for start := 0; start < len(signal); start += blockSize {
		end := start + blockSize
		if end > len(signal) {
			end = len(signal)
		}
		d.Push(signal[start:end])
	}
}

func TestDispatcherTiers(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)

	tiers := dispatcher.Tiers()
	if len(tiers) != 3 {
		t.Fatalf("Expected 3 tiers, got %d", len(tiers))
	}

	for i := 1; i < len(tiers); i++ {
		if tiers[i].BufferSize <= tiers[i-1].BufferSize {
			t.Errorf("Tiers must be ordered by ascending buffer size: %v", tiers)
		}
	}
	for _, tier := range tiers {
		if tier.HopSize > tier.BufferSize {
			t.Errorf("Tier hop %d exceeds buffer %d", tier.HopSize, tier.BufferSize)
		}
		if tier.BufferSize > dispatcher.AccumulationSize() {
			t.Errorf("Tier buffer %d exceeds ring %d", tier.BufferSize, dispatcher.AccumulationSize())
		}
	}

	if tiers[0].BufferSize != 512 || tiers[0].HopSize != 128 {
		t.Errorf("Fast tier should be 512/128, got %d/%d", tiers[0].BufferSize, tiers[0].HopSize)
	}
	if tiers[2].BufferSize != dispatcher.AccumulationSize() {
		t.Errorf("Full tier should span the ring, got %d", tiers[2].BufferSize)
	}
}

func TestDispatcherConvergence(t *testing.T) {
	// Continuous 440 Hz sine at 48 kHz, fed in 256-sample blocks.
	const sampleRate = 48000.0
	dispatcher := newTestDispatcher(t, 4096, sampleRate)

	signal := utils.GenerateSineWave(4096, sampleRate, 440.0)
	feedBlocks(dispatcher, signal, 256)

	frequency, confidence, ok := dispatcher.ReadLatest()
	if !ok {
		t.Fatal("Dispatcher should publish a valid reading for a steady sine")
	}
	if cents := math.Abs(utils.CentsBetween(frequency, 440.0)); cents > 1.0 {
		t.Errorf("Published %.4f Hz, want 440 Hz within 1 cent (off by %.2f)", frequency, cents)
	}
	if confidence < 0.5 {
		t.Errorf("Confidence %.3f should clear the 0.5 threshold", confidence)
	}
}

func TestDispatcherSilenceInvalidates(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)

	signal := utils.GenerateSineWave(4096, testSampleRate, 440.0)
	feedBlocks(dispatcher, signal, 256)
	if _, _, ok := dispatcher.ReadLatest(); !ok {
		t.Fatal("Expected a valid reading after the sine")
	}

	// Feed a full ring of silence; the published result must go invalid.
	silence := make([]float32, dispatcher.AccumulationSize())
	feedBlocks(dispatcher, silence, 256)
	if _, _, ok := dispatcher.ReadLatest(); ok {
		t.Error("Reading should be invalid after silence")
	}
}

func TestDispatcherInitiallyInvalid(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)

	if _, _, ok := dispatcher.ReadLatest(); ok {
		t.Error("Fresh dispatcher should report no valid reading")
	}
}

func TestDispatcherLowFrequencyFallsThrough(t *testing.T) {
	// 60 Hz is under the fast tier's 86 Hz floor; the medium or full tier
	// must pick it up.
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)

	signal := utils.GenerateSineWave(8192, testSampleRate, 60.0)
	feedBlocks(dispatcher, signal, 256)

	frequency, _, ok := dispatcher.ReadLatest()
	if !ok {
		t.Fatal("60 Hz sine should be detected by a deeper tier")
	}
	if cents := math.Abs(utils.CentsBetween(frequency, 60.0)); cents > 5.0 {
		t.Errorf("Published %.4f Hz, want 60 Hz within 5 cents", frequency)
	}
}

func TestConfidenceThresholdClamp(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)

	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.5, 0.0},
		{0.0, 0.0},
		{0.7, 0.7},
		{1.0, 1.0},
		{1.5, 1.0},
	}

	for _, tt := range tests {
		dispatcher.SetConfidenceThreshold(tt.input)
		if got := dispatcher.ConfidenceThreshold(); got != tt.expected {
			t.Errorf("SetConfidenceThreshold(%.2f): got %.2f, want %.2f", tt.input, got, tt.expected)
		}
	}
}

func TestImpossibleThresholdSuppressesPublication(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)
	dispatcher.SetConfidenceThreshold(1.0)

	signal := utils.GenerateSineWaveAmp(4096, testSampleRate, 440.0, 0.8)
	feedBlocks(dispatcher, signal, 256)

	// Real-world confidence stays under 1.0, so nothing qualifies.
	if _, _, ok := dispatcher.ReadLatest(); ok {
		t.Error("No tier should clear a 1.0 confidence threshold")
	}
}

func TestDispatcherRingRounding(t *testing.T) {
	dispatcher := newTestDispatcher(t, 3000, testSampleRate)
	if got := dispatcher.AccumulationSize(); got != 4096 {
		t.Errorf("Ring should round up to 4096, got %d", got)
	}
}

func TestPushHotPath(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)
	block := utils.GenerateSineWave(256, testSampleRate, 440.0)

	// Warm-up: fill the ring and trigger detection passes.
	for i := 0; i < 32; i++ {
		dispatcher.Push(block)
	}

	allocs := testing.AllocsPerRun(50, func() {
		dispatcher.Push(block)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Push hot path, got %.1f", allocs)
	}
}

func TestPushEmptyBlock(t *testing.T) {
	dispatcher := newTestDispatcher(t, 4096, testSampleRate)
	dispatcher.Push(nil)
	dispatcher.Push([]float32{})

	if _, _, ok := dispatcher.ReadLatest(); ok {
		t.Error("Empty pushes should not publish anything")
	}
}
