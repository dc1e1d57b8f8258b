package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tuner/cmd"
	"tuner/internal/analysis"
	"tuner/internal/audio"
	"tuner/internal/config"
	applog "tuner/internal/log"
	"tuner/internal/transport"
	"tuner/internal/transport/udp"
	"tuner/internal/tui"
	"tuner/pkg/build"
	"tuner/pkg/notes"
)

// main is the entry point for the tuner.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Configure runtime settings
//   - Initialize PortAudio
//   - Parse command line arguments and config file
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Build the analysis dispatcher and audio engine
//   - Start the capture stream (PortAudio begins calling the callback)
//   - Start recording and transports if enabled
//   - Run the terminal display
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination
//   - Stop recording, transports and streams
func main() {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := build.Initialize(); err != nil {
		log.Fatal(err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for UI and I/O
	runtime.GOMAXPROCS(2)

	if err := audio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer audio.Terminate()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		log.Fatal(err)
	}
	applog.SetVerbose(cfg.Verbose)

	if cfg.Command != "" {
		if err := executeCommand(cfg.Command); err != nil {
			log.Fatal(err)
		}
		return
	}
	if !cfg.TUIMode {
		return
	}

	// Desktop builds always hold microphone permission; the check keeps
	// the startup flow identical to platforms that prompt.
	var permissions audio.Permissions = audio.DesktopPermissions{}
	if status := permissions.MicrophoneStatus(); status != audio.PermissionGranted {
		log.Fatalf("microphone permission %s", status)
	}

	// ==================== CONCURRENT PHASE (Hot Path) ====================

	dispatcher, err := analysis.NewDispatcher(cfg.AccumulationSize, cfg.SampleRate)
	if err != nil {
		log.Fatal(err)
	}
	dispatcher.SetConfidenceThreshold(cfg.ConfidenceThreshold)
	applyWindowSetting(dispatcher, cfg.Window)

	// Persisted settings override the default reference unless a flag or
	// file already moved it.
	settings := config.NewManager(config.NewFileStorage("tuner-settings.yaml"))
	reference := cfg.ReferencePitch
	if reference == config.DefaultReferencePitch {
		reference = settings.ReferencePitch()
	} else {
		settings.SetReferencePitch(reference)
	}

	source := analysis.NewReadingSource(dispatcher, notes.NewCalculatorWithReference(reference))

	engine, err := audio.NewEngine(cfg, dispatcher)
	if err != nil {
		log.Fatal(err)
	}

	// CRITICAL: the first callback after StartInputStream marks the start
	// of the hot path.
	if err := engine.StartInputStream(); err != nil {
		log.Fatal(err)
	}

	if cfg.RecordInputStream {
		if err := engine.StartRecording(cfg.OutputFile); err != nil {
			log.Fatal(err)
		}
	}

	publishers := startTransports(cfg, source)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// The TUI owns stdout; keep the logger off it.
	applog.SetOutput(os.Stderr)
	program := tea.NewProgram(tui.NewModel(source, engine))
	go func() {
		<-done
		program.Quit()
	}()
	if _, err := program.Run(); err != nil {
		applog.Errorf("TUI error: %v", err)
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	for _, stop := range publishers {
		stop()
	}

	if cfg.RecordInputStream {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("Error stopping recording: %v", err)
		}
		fmt.Printf("\nRecording saved to: %s\n", cfg.OutputFile)
	}

	if err := engine.Close(); err != nil {
		applog.Errorf("Error closing audio engine: %v", err)
	}
}

// applyWindowSetting configures every tier's detector with the selected
// analysis window.
func applyWindowSetting(dispatcher *analysis.Dispatcher, name string) {
	var window analysis.WindowFunc
	switch name {
	case "hann":
		window = analysis.Hann
	case "hamming":
		window = analysis.Hamming
	default:
		window = analysis.Rectangular
	}
	for i := range dispatcher.Tiers() {
		dispatcher.Detector(i).SetWindowType(window)
	}
}

// startTransports wires the enabled reading transports and returns their
// stop functions.
func startTransports(cfg *config.Config, source *analysis.ReadingSource) []func() {
	var stops []func()

	if cfg.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.WebSocketAddr)
		publisher := transport.NewReadingPublisher(16*time.Millisecond, source, ws)
		publisher.Start()
		stops = append(stops, func() {
			publisher.Stop()
			ws.Close()
		})
	}

	if cfg.UDPEnabled {
		sender, err := udp.NewSender(cfg.UDPTarget)
		if err != nil {
			applog.Errorf("UDP transport disabled: %v", err)
		} else {
			publisher, err := udp.NewPublisher(16*time.Millisecond, sender, source)
			if err != nil {
				applog.Errorf("UDP transport disabled: %v", err)
				sender.Close()
			} else {
				publisher.Start()
				stops = append(stops, func() {
					publisher.Stop()
					sender.Close()
				})
			}
		}
	}

	return stops
}

// executeCommand handles one-off commands that don't require the engine,
// such as listing audio devices.
func executeCommand(command string) error {
	switch command {
	case "list":
		return audio.ListDevices()
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
