// SPDX-License-Identifier: MIT
package audio

import (
	"math"
	"testing"

	"tuner/internal/config"
)

func newGateTestEngine() *Engine {
	return &Engine{
		config: &config.Config{
			SampleRate:      44100,
			Channels:        1,
			FramesPerBuffer: 256,
		},
	}
}

func TestGateEnableDisable(t *testing.T) {
	engine := newGateTestEngine()

	if engine.gateEnabled {
		t.Error("Gate should be disabled initially")
	}

	engine.EnableGate()
	if !engine.gateEnabled {
		t.Error("Gate should be enabled after EnableGate()")
	}

	engine.DisableGate()
	engine.DisableGate() // Multiple calls should be idempotent
	if engine.gateEnabled {
		t.Error("Gate should remain disabled after DisableGate()")
	}
}

func TestGateThresholdBoundaries(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-0.1, 0.0}, // Below min
		{0.0, 0.0},  // Minimum
		{0.5, 0.5},  // Middle
		{1.0, 1.0},  // Maximum
		{1.5, 1.0},  // Above max
	}

	engine := newGateTestEngine()

	for _, tt := range tests {
		engine.SetGateThreshold(tt.input)
		got := engine.GetGateThreshold()

		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("Gate threshold conversion: got %.3f, want %.3f", got, tt.expected)
		}
	}
}

func TestGateBlocksQuietBuffers(t *testing.T) {
	engine := newGateTestEngine()
	engine.EnableGate()
	engine.SetGateThreshold(0.01)

	// Quiet buffer stays out, loud buffer passes through. With a nil
	// dispatcher passing through is a no-op, so this exercises only the
	// gate branch; the dispatcher path is covered in analysis tests.
	quiet := make([]float32, 256)
	for i := range quiet {
		quiet[i] = 0.001
	}
	engine.processBuffer(quiet)

	loud := make([]float32, 256)
	for i := range loud {
		loud[i] = 0.5
	}
	engine.processBuffer(loud)
}

func TestGateHotPath(t *testing.T) {
	engine := newGateTestEngine()
	engine.EnableGate()
	engine.SetGateThreshold(0.01)

	buffer := make([]float32, 1024)
	for i := range buffer {
		buffer[i] = float32(i%100) / 100.0
	}

	allocs := testing.AllocsPerRun(100, func() {
		engine.processBuffer(buffer)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in gate hot path, got %.1f", allocs)
	}
}
