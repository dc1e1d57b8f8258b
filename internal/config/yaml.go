// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the YAML config file layout. Only fields present in
// the file override the in-memory Config; pointers distinguish "absent"
// from zero values.
type fileConfig struct {
	Audio struct {
		InputDevice     *int     `yaml:"input_device"`
		SampleRate      *float64 `yaml:"sample_rate"`
		FramesPerBuffer *int     `yaml:"frames_per_buffer"`
		LowLatency      *bool    `yaml:"low_latency"`
	} `yaml:"audio"`

	Tuner struct {
		ReferencePitch      *float64 `yaml:"reference_pitch"`
		ConfidenceThreshold *float64 `yaml:"confidence_threshold"`
		Window              *string  `yaml:"window"`
		AccumulationSize    *int     `yaml:"accumulation_size"`
	} `yaml:"tuner"`

	Recording struct {
		Enabled    *bool   `yaml:"enabled"`
		OutputFile *string `yaml:"output_file"`
	} `yaml:"recording"`

	Transport struct {
		WebSocketEnabled *bool   `yaml:"websocket_enabled"`
		WebSocketAddr    *string `yaml:"websocket_addr"`
		UDPEnabled       *bool   `yaml:"udp_enabled"`
		UDPTarget        *string `yaml:"udp_target"`
	} `yaml:"transport"`
}

// ApplyFile merges settings from a YAML file into cfg. An empty path
// searches the default location ("tuner.yaml"); a missing default file is
// not an error. Environment overrides are applied afterwards and the
// merged result is validated.
func ApplyFile(cfg *Config, path string) error {
	explicit := path != ""
	if path == "" {
		path = "tuner.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg.Validate()
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Audio.InputDevice != nil {
		cfg.DeviceID = *fc.Audio.InputDevice
	}
	if fc.Audio.SampleRate != nil {
		cfg.SampleRate = *fc.Audio.SampleRate
	}
	if fc.Audio.FramesPerBuffer != nil {
		cfg.FramesPerBuffer = *fc.Audio.FramesPerBuffer
	}
	if fc.Audio.LowLatency != nil {
		cfg.LowLatency = *fc.Audio.LowLatency
	}
	if fc.Tuner.ReferencePitch != nil {
		cfg.ReferencePitch = ClampReferencePitch(*fc.Tuner.ReferencePitch)
	}
	if fc.Tuner.ConfidenceThreshold != nil {
		cfg.ConfidenceThreshold = *fc.Tuner.ConfidenceThreshold
	}
	if fc.Tuner.Window != nil {
		cfg.Window = *fc.Tuner.Window
	}
	if fc.Tuner.AccumulationSize != nil {
		cfg.AccumulationSize = *fc.Tuner.AccumulationSize
	}
	if fc.Recording.Enabled != nil {
		cfg.RecordInputStream = *fc.Recording.Enabled
	}
	if fc.Recording.OutputFile != nil {
		cfg.OutputFile = *fc.Recording.OutputFile
	}
	if fc.Transport.WebSocketEnabled != nil {
		cfg.WebSocketEnabled = *fc.Transport.WebSocketEnabled
	}
	if fc.Transport.WebSocketAddr != nil {
		cfg.WebSocketAddr = *fc.Transport.WebSocketAddr
	}
	if fc.Transport.UDPEnabled != nil {
		cfg.UDPEnabled = *fc.Transport.UDPEnabled
	}
	if fc.Transport.UDPTarget != nil {
		cfg.UDPTarget = *fc.Transport.UDPTarget
	}

	applyEnvOverrides(cfg)
	return cfg.Validate()
}

// applyEnvOverrides lets TUNER_* environment variables win over file
// settings, for containerized runs without a config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TUNER_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.SampleRate = rate
		}
	}
	if v := os.Getenv("TUNER_DEVICE"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.DeviceID = id
		}
	}
	if v := os.Getenv("TUNER_REFERENCE_PITCH"); v != "" {
		if hz, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ReferencePitch = ClampReferencePitch(hz)
		}
	}
}

// Validate checks the merged configuration for values the engine cannot
// run with.
func (c *Config) Validate() error {
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample rate %.0f out of range [%d, %d]", c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames per buffer must be positive, got %d", c.FramesPerBuffer)
	}
	if c.AccumulationSize <= 0 {
		return fmt.Errorf("accumulation size must be positive, got %d", c.AccumulationSize)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %.2f out of range [0, 1]", c.ConfidenceThreshold)
	}
	switch c.Window {
	case "rectangular", "hann", "hamming":
	default:
		return fmt.Errorf("unknown window function %q", c.Window)
	}
	return nil
}
