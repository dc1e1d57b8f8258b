package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"tuner/internal/config"
	"tuner/pkg/build"
)

// ParseArgs builds the runtime configuration: defaults, then command line
// flags, then any config file and environment overrides on top.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()
	options := config.NewConfig()
	configPath := ""

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.TUIMode = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
			options.TUIMode = false
		},
	}
	rootCmd.AddCommand(listCmd)

	// Audio Device Configuration
	rootCmd.PersistentFlags().IntVarP(&options.DeviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().Float64VarP(&options.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&options.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"The number of frames per buffer (affects latency)")
	rootCmd.PersistentFlags().BoolVarP(&options.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")

	// Tuner Configuration
	rootCmd.PersistentFlags().Float64VarP(&options.ReferencePitch, "a4", "a", config.DefaultReferencePitch,
		"Reference pitch for A4 in Hz (clamped to [410, 480])")
	rootCmd.PersistentFlags().Float64VarP(&options.ConfidenceThreshold, "confidence", "c", config.DefaultConfidenceThreshold,
		"Minimum detection confidence to publish a reading (0-1)")
	rootCmd.PersistentFlags().StringVarP(&options.Window, "window", "w", config.DefaultWindow,
		"Analysis window function: rectangular, hann or hamming")

	// Recording Configuration
	rootCmd.PersistentFlags().BoolVarP(&options.RecordInputStream, "record", "r", false,
		"Record audio from the input device while tuning")
	rootCmd.PersistentFlags().StringVarP(&options.OutputFile, "output", "o", config.DefaultOutputFile,
		"Output file name. Default is recording-MM-DD-YYYY-HHMMSS.wav")

	// Transport Configuration
	rootCmd.PersistentFlags().BoolVar(&options.WebSocketEnabled, "websocket", false,
		"Broadcast readings as JSON over a WebSocket server")
	rootCmd.PersistentFlags().BoolVar(&options.UDPEnabled, "udp", false,
		"Publish binary reading packets over UDP")

	// Debug Configuration
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML config file (default: tuner.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&options.Verbose, "verbose", "v", config.DefaultVerbosity,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	// Fields present in the config file or environment win over flags;
	// the merged result is validated.
	if err := config.ApplyFile(options, configPath); err != nil {
		return nil, err
	}
	options.ReferencePitch = config.ClampReferencePitch(options.ReferencePitch)

	if options.OutputFile == "" {
		options.OutputFile = "recording-" +
			time.Now().UTC().Format("01-02-2006-150405") +
			"." + options.Format
	}

	return options, nil
}
