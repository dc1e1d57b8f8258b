// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyFileDefaults(t *testing.T) {
	// No file, no env: defaults survive validation untouched.
	cfg := NewConfig()
	if err := ApplyFile(cfg, ""); err != nil {
		t.Fatalf("ApplyFile with defaults: %v", err)
	}

	if cfg.SampleRate != DefaultSampleRate {
		t.Errorf("Sample rate changed without a file: %f", cfg.SampleRate)
	}
	if cfg.ReferencePitch != DefaultReferencePitch {
		t.Errorf("Reference pitch changed without a file: %f", cfg.ReferencePitch)
	}
}

func TestApplyFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuner.yaml")
	content := `
audio:
  sample_rate: 48000
  frames_per_buffer: 512
tuner:
  reference_pitch: 442
  window: hann
transport:
  websocket_enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	if err := ApplyFile(cfg, path); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}

	if cfg.SampleRate != 48000 {
		t.Errorf("Sample rate: got %f, want 48000", cfg.SampleRate)
	}
	if cfg.FramesPerBuffer != 512 {
		t.Errorf("Frames per buffer: got %d, want 512", cfg.FramesPerBuffer)
	}
	if cfg.ReferencePitch != 442 {
		t.Errorf("Reference pitch: got %f, want 442", cfg.ReferencePitch)
	}
	if cfg.Window != "hann" {
		t.Errorf("Window: got %q, want hann", cfg.Window)
	}
	if !cfg.WebSocketEnabled {
		t.Error("WebSocket should be enabled")
	}
	// Untouched fields keep their defaults.
	if cfg.ConfidenceThreshold != DefaultConfidenceThreshold {
		t.Errorf("Confidence threshold should be default, got %f", cfg.ConfidenceThreshold)
	}
}

func TestApplyFileClampsReferencePitch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuner.yaml")
	if err := os.WriteFile(path, []byte("tuner:\n  reference_pitch: 1000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewConfig()
	if err := ApplyFile(cfg, path); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if cfg.ReferencePitch != MaxReferencePitch {
		t.Errorf("Out-of-range reference should clamp to %f, got %f", float64(MaxReferencePitch), cfg.ReferencePitch)
	}
}

func TestApplyFileMissingExplicitPath(t *testing.T) {
	cfg := NewConfig()
	if err := ApplyFile(cfg, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("An explicitly named missing file should be an error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.SampleRate = 100 }},
		{"sample rate too high", func(c *Config) { c.SampleRate = 500000 }},
		{"zero frames", func(c *Config) { c.FramesPerBuffer = 0 }},
		{"negative accumulation", func(c *Config) { c.AccumulationSize = -1 }},
		{"confidence above one", func(c *Config) { c.ConfidenceThreshold = 1.5 }},
		{"unknown window", func(c *Config) { c.Window = "kaiser" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should reject the configuration")
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TUNER_REFERENCE_PITCH", "435")

	cfg := NewConfig()
	if err := ApplyFile(cfg, ""); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if cfg.ReferencePitch != 435 {
		t.Errorf("Env override should set 435, got %f", cfg.ReferencePitch)
	}
}
