// SPDX-License-Identifier: MIT
package audio

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"tuner/internal/config"
)

func newTestEngine() *Engine {
	return &Engine{
		config: &config.Config{
			SampleRate:      44100,
			Channels:        1,
			FramesPerBuffer: 256,
		},
	}
}

func TestRecordingStartStop(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test_recording.wav")
	engine := newTestEngine()

	if err := engine.StartRecording(filename); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}

	if atomic.LoadInt32(&engine.isRecording) != 1 {
		t.Error("Engine should be in recording state")
	}
	if engine.outputFile == nil {
		t.Error("Output file should be initialized")
	}
	if engine.wavEncoder == nil {
		t.Error("WAV encoder should be initialized")
	}
	if engine.sampleBuf == nil || len(engine.sampleBuf.Data) != 256 {
		t.Error("Conversion buffer should be pre-allocated to the frame size")
	}

	if err := engine.StopRecording(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if atomic.LoadInt32(&engine.isRecording) != 0 {
		t.Error("Engine should have left recording state")
	}
}

func TestRecordingDoubleStart(t *testing.T) {
	dir := t.TempDir()
	engine := newTestEngine()

	if err := engine.StartRecording(filepath.Join(dir, "a.wav")); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	if err := engine.StartRecording(filepath.Join(dir, "b.wav")); err == nil {
		t.Error("Second StartRecording should fail while recording")
	}
	if err := engine.StopRecording(); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
}

func TestRecordingStopWithoutStart(t *testing.T) {
	engine := newTestEngine()
	if err := engine.StopRecording(); err != nil {
		t.Errorf("StopRecording without start should be a no-op, got %v", err)
	}
}
