// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	applog "tuner/internal/log"
)

// StartTone opens an output stream playing the reference tone at the
// given frequency. Retuning a running tone only stores the frequency.
func (e *Engine) StartTone(frequency float64) error {
	e.toneGen.SetFrequency(frequency)
	if e.outputStream != nil {
		return nil
	}

	device, err := OutputDevice()
	if err != nil {
		return fmt.Errorf("no output device: %w", err)
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   device,
			Latency:  device.DefaultHighOutputLatency,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processOutputStream)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	e.outputStream = stream

	if err := e.outputStream.Start(); err != nil {
		e.outputStream.Close()
		e.outputStream = nil
		return fmt.Errorf("failed to start output stream: %w", err)
	}

	applog.Infof("Audio: Playing reference tone at %.2f Hz", frequency)
	return nil
}

// StopTone stops and closes the output stream if one is running.
func (e *Engine) StopTone() error {
	if e.outputStream == nil {
		return nil
	}
	if err := e.outputStream.Stop(); err != nil {
		return err
	}
	if err := e.outputStream.Close(); err != nil {
		return err
	}
	e.outputStream = nil
	return nil
}

// processOutputStream is the playback callback. Hot path: the generator
// is allocation-free.
func (e *Engine) processOutputStream(out []float32) {
	e.toneGen.Generate(out, e.config.SampleRate)
}
