// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"viscore/internal/config"
)

const version = "0.1.0"

// ParseArgs loads the configuration (defaults, YAML file, environment) and
// layers the command line on top. The --config flag is pre-scanned by hand
// because the file has to be loaded before cobra binds flag defaults to it.
func ParseArgs() (*config.Config, error) {
	configPath := ""
	for i, arg := range os.Args[1:] {
		if arg == "--config" && i+2 < len(os.Args) {
			configPath = os.Args[i+2]
		}
	}

	options, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           "viscore",
		Short:         "Real-time audio analysis and visualization engine",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Run: func(cmd *cobra.Command, args []string) {
			options.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Capture configuration
	rootCmd.PersistentFlags().StringVar(&configPath, "config", configPath,
		"Path to a YAML configuration file")
	rootCmd.PersistentFlags().IntVarP(&options.Audio.Device, "device", "d", options.Audio.Device,
		"Input device ID. Use 'list' to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&options.Audio.Rate, "rate", "s", options.Audio.Rate,
		"Sample rate in Hertz (Hz)")
	rootCmd.PersistentFlags().StringVarP(&options.InputFile, "input", "i", options.InputFile,
		"Replay a WAV file instead of capturing live input")

	// Analysis configuration
	rootCmd.PersistentFlags().IntVar(&options.Fourier.Length, "fourier-length", options.Fourier.Length,
		"Transform length in samples (power of 2)")
	rootCmd.PersistentFlags().StringVarP(&options.Fourier.Window, "window", "w", options.Fourier.Window,
		"Window function: none, sine, triangular, hann, hamming, blackman, nuttall")
	rootCmd.PersistentFlags().IntVar(&options.Fourier.Downsample, "downsample", options.Fourier.Downsample,
		"Read stride into the sample buffer")

	// Recording configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Recording.Enabled, "record", "r", options.Recording.Enabled,
		"Mirror captured audio into a WAV file")
	rootCmd.PersistentFlags().StringVarP(&options.Recording.OutputFile, "output", "o", options.Recording.OutputFile,
		"Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Transport configuration
	rootCmd.PersistentFlags().BoolVar(&options.Transport.WebSocketEnabled, "websocket", options.Transport.WebSocketEnabled,
		"Broadcast analysis frames over WebSocket")
	rootCmd.PersistentFlags().StringVar(&options.Transport.WebSocketPort, "websocket-port", options.Transport.WebSocketPort,
		"WebSocket server port")
	rootCmd.PersistentFlags().BoolVar(&options.Transport.UDPEnabled, "udp", options.Transport.UDPEnabled,
		"Send analysis frames as UDP packets")
	rootCmd.PersistentFlags().StringVar(&options.Transport.UDPTargetAddress, "udp-target", options.Transport.UDPTargetAddress,
		"UDP target address (host:port)")

	// Debug configuration
	rootCmd.PersistentFlags().BoolVarP(&options.Debug, "verbose", "v", options.Debug,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	if options.Recording.Enabled && options.Recording.OutputFile == "" {
		options.Recording.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}
	if options.Debug {
		options.LogLevel = "debug"
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}
