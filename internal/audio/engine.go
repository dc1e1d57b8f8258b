// SPDX-License-Identifier: MIT
/*
Package audio implements the tuner's PortAudio front end:
- Lock-free float32 capture feeding the pitch analysis dispatcher
- Noise gate conditioning the input before analysis
- Reference tone playback through an output stream
- WAV recording with atomic state management

Thread Safety:
- The capture callback mutates only pre-allocated engine state
- Recording start/stop is guarded by an atomic flag
- The dispatcher is the single analysis sink; results cross to the UI
  through its lock-free slot
*/
package audio

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"tuner/internal/analysis"
	"tuner/internal/config"
	applog "tuner/internal/log"
)

// recordingBitDepth is the PCM depth of recorded WAV files.
const recordingBitDepth = 16

type Engine struct {
	// Core configuration and analysis sink.
	config     *config.Config
	dispatcher *analysis.Dispatcher

	// Audio input handling.
	inputBuffer  []float32
	inputDevice  *portaudio.DeviceInfo
	inputLatency time.Duration
	inputStream  *portaudio.Stream

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold float32 // Peak amplitude threshold in [0, 1]

	// Reference tone playback.
	toneGen      *analysis.ToneGenerator
	outputStream *portaudio.Stream

	// Recording state and buffers.
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
}

// NewEngine creates an engine capturing from the configured device into
// the given dispatcher. All hot-path buffers are allocated here.
func NewEngine(cfg *config.Config, dispatcher *analysis.Dispatcher) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:        cfg,
		dispatcher:    dispatcher,
		inputBuffer:   make([]float32, cfg.FramesPerBuffer),
		inputDevice:   inputDevice,
		toneGen:       analysis.NewToneGenerator(cfg.ReferencePitch),
		gateEnabled:   false,
		gateThreshold: 0.001,
	}

	if cfg.LowLatency {
		e.inputLatency = inputDevice.DefaultLowInputLatency
	} else {
		e.inputLatency = inputDevice.DefaultHighInputLatency
	}

	applog.Infof("Audio: Engine ready (device: %s, rate: %.0f Hz, frames: %d)",
		inputDevice.Name, cfg.SampleRate, cfg.FramesPerBuffer)

	return e, nil
}

// Dispatcher returns the analysis sink, for consumers wiring transports
// and the display.
func (e *Engine) Dispatcher() *analysis.Dispatcher {
	return e.dispatcher
}

// ToneGenerator returns the reference tone synthesizer.
func (e *Engine) ToneGenerator() *analysis.ToneGenerator {
	return e.toneGen
}

// StartInputStream opens the capture stream and begins the hot path: from
// the first callback on, PortAudio drives processInputStream on its own
// thread.
func (e *Engine) StartInputStream() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		FramesPerBuffer: e.config.FramesPerBuffer,
		SampleRate:      e.config.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

// StopInputStream stops and closes the capture stream.
func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}
		if err := e.inputStream.Close(); err != nil {
			return err
		}
		e.inputStream = nil
	}
	return nil
}

// processInputStream is the core capture callback.
// Performance Critical:
// - Runs on a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
// - No dynamic allocations or locks; logs only when a WAV write fails
func (e *Engine) processInputStream(in []float32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer[:len(in)])

	// Write to WAV file if recording
	if atomic.LoadInt32(&e.isRecording) == 1 && e.wavEncoder != nil {
		e.sampleBuf.Data = e.sampleBuf.Data[:len(in)]
		for i, sample := range in {
			e.sampleBuf.Data[i] = int(sample * math.MaxInt16)
		}

		if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
			// Cold-path I/O already failed; a log line won't make the
			// callback miss its deadline twice.
			applog.Errorf("Audio: WAV write failed: %v", err)
		}
	}
}

// processBuffer conditions the buffer and hands it to the dispatcher.
// Hot path: no allocations.
func (e *Engine) processBuffer(buffer []float32) {
	if e.gateEnabled {
		var peak float32
		for _, sample := range buffer {
			if sample < 0 {
				sample = -sample
			}
			if sample > peak {
				peak = sample
			}
		}
		if peak <= e.gateThreshold {
			return
		}
	}

	if e.dispatcher != nil {
		e.dispatcher.Push(buffer)
	}
}

// Close stops any recording, playback and capture, in that order.
func (e *Engine) Close() error {
	if atomic.LoadInt32(&e.isRecording) == 1 {
		if err := e.StopRecording(); err != nil {
			return err
		}
	}
	if err := e.StopTone(); err != nil {
		return err
	}
	return e.StopInputStream()
}
