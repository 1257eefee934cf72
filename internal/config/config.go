// SPDX-License-Identifier: MIT
// Package config holds the explicit runtime configuration for the engine.
// Every component takes the values it needs from here through named fields;
// there is no process-wide lookup-by-key.
package config

// Boundary constants for validation.
const (
	MinDeviceID   = -1 // -1 selects the system default input device
	MinSampleRate = 4000
	MaxSampleRate = 192000
	MaxBufferSize = 1 << 20
)

// Config is the full runtime configuration. It is constructed once from
// defaults, an optional YAML file and environment overrides, then passed by
// value into each component's constructor.
type Config struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`

	// CLI-only fields, never read from the file.
	Command   string `yaml:"-"` // one-off subcommand ("list"), empty to run
	InputFile string `yaml:"-"` // WAV file to replay instead of live capture

	Audio     AudioConfig     `yaml:"audio"`
	Fourier   FourierConfig   `yaml:"fourier"`
	Beat      BeatConfig      `yaml:"beat"`
	Vis       VisConfig       `yaml:"vis"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture-side settings.
type AudioConfig struct {
	Device   int `yaml:"device"`    // input device index, -1 for default
	Rate     int `yaml:"rate"`      // sample rate in Hz
	Buffer   int `yaml:"buffer"`    // sample ring size in frames
	ReadSize int `yaml:"read_size"` // frames pushed per capture callback
}

// FourierConfig holds the main spectral analyzer settings.
type FourierConfig struct {
	Length     int    `yaml:"length"`     // transform length, power of 2
	Window     string `yaml:"window"`     // window function name
	Downsample int    `yaml:"downsample"` // read stride into the sample ring
}

// BeatConfig holds the beat detector settings.
type BeatConfig struct {
	Decay         float64 `yaml:"decay"`          // baseline decay constant
	Trigger       float64 `yaml:"trigger"`        // fraction of baseline a swing must exceed
	Low           float64 `yaml:"low"`            // band lower bound in Hz
	High          float64 `yaml:"high"`           // band upper bound in Hz
	FourierLength int     `yaml:"fourier_length"` // private analyzer transform length
	Downsample    int     `yaml:"downsample"`     // private analyzer read stride
}

// VisConfig holds frame-layer settings.
type VisConfig struct {
	ConversionsPerSecond float64 `yaml:"conversions_per_second"` // detached analyzer rate, 0 = inline
}

// RecordingConfig holds the optional capture-tap settings.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // empty for a generated name
}

// TransportConfig holds the optional frame publishers.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketPort    string `yaml:"websocket_port"`
	UDPEnabled       bool   `yaml:"udp_enabled"`
	UDPTargetAddress string `yaml:"udp_target_address"`
}

// NewConfig returns the built-in defaults, matching a small mono-friendly
// visualizer setup: 8 kHz capture into a two second ring, a 512-point
// unwindowed transform, and the classic 50-100 Hz beat band.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			Device:   MinDeviceID,
			Rate:     8000,
			Buffer:   16000,
			ReadSize: 32,
		},
		Fourier: FourierConfig{
			Length:     512,
			Window:     "none",
			Downsample: 5,
		},
		Beat: BeatConfig{
			Decay:         1000,
			Trigger:       0.5,
			Low:           50,
			High:          100,
			FourierLength: 16,
			Downsample:    10,
		},
		Vis: VisConfig{
			ConversionsPerSecond: 60,
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketPort:    "8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
		},
	}
}
