// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load builds a Config from defaults, then the YAML file at path if given
// (or the first default location that exists), then environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{
			"visualizer.yaml",
			"config/visualizer.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values no component can accept.
func (c *Config) Validate() error {
	if c.Audio.Rate < MinSampleRate || c.Audio.Rate > MaxSampleRate {
		return fmt.Errorf("audio.rate %d outside supported range %d-%d",
			c.Audio.Rate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.Buffer <= 0 || c.Audio.Buffer > MaxBufferSize {
		return fmt.Errorf("audio.buffer %d outside supported range 1-%d",
			c.Audio.Buffer, MaxBufferSize)
	}
	if c.Fourier.Length*c.Fourier.Downsample > c.Audio.Buffer {
		return fmt.Errorf("fourier window %d*%d does not fit the %d frame buffer",
			c.Fourier.Length, c.Fourier.Downsample, c.Audio.Buffer)
	}
	if c.Beat.FourierLength*c.Beat.Downsample > c.Audio.Buffer {
		return fmt.Errorf("beat fourier window %d*%d does not fit the %d frame buffer",
			c.Beat.FourierLength, c.Beat.Downsample, c.Audio.Buffer)
	}
	if c.Beat.Low >= c.Beat.High {
		return fmt.Errorf("beat band %g-%g Hz is empty", c.Beat.Low, c.Beat.High)
	}
	if c.Vis.ConversionsPerSecond < 0 {
		return fmt.Errorf("vis.conversions_per_second must not be negative")
	}
	return nil
}

// applyEnvOverrides lets VISCORE_* environment variables override the
// loaded values, applied after file parsing.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("VISCORE_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
		}
	}
	if val, ok := os.LookupEnv("VISCORE_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("VISCORE_AUDIO_RATE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Audio.Rate = n
		}
	}
	if val, ok := os.LookupEnv("VISCORE_AUDIO_DEVICE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Audio.Device = n
		}
	}
	if val, ok := os.LookupEnv("VISCORE_WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = b
		}
	}
	if val, ok := os.LookupEnv("VISCORE_UDP_TARGET"); ok {
		c.Transport.UDPTargetAddress = val
		c.Transport.UDPEnabled = true
	}
}
