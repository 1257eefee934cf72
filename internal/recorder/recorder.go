// SPDX-License-Identifier: MIT
/*
Package recorder implements the capture backends that feed the shared
sample buffer: live PortAudio input and WAV-file replay. Backends own the
buffer and push stereo frames into it from their own goroutine or audio
callback; the analyzer side only ever reads through the buffer's lock.
*/
package recorder

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Config holds the settings shared by all capture backends. Zero fields
// fall back to the defaults below.
type Config struct {
	Device   int // input device index, -1 or 0-default for system default
	Rate     int // sample rate in Hz (default 8000)
	Buffer   int // sample ring size in frames (default 16000)
	ReadSize int // frames pushed per capture cycle (default 32)
}

func (c *Config) applyDefaults() {
	if c.Rate == 0 {
		c.Rate = 8000
	}
	if c.Buffer == 0 {
		c.Buffer = 16000
	}
	if c.ReadSize == 0 {
		c.ReadSize = 32
	}
}

// Initialize sets up the PortAudio subsystem. Must be called before any
// live-capture operation and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts the PortAudio subsystem down.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// InputDevice resolves a device index to a PortAudio input device.
// A negative index selects the system default.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID < 0 {
		return portaudio.DefaultInputDevice()
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices prints all available audio devices with their channel
// counts, default rates and latency ranges.
func ListDevices() error {
	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	fmt.Printf("\nAvailable Audio Devices\n\n")
	for i, device := range devices {
		deviceType := ""
		switch {
		case device.MaxInputChannels > 0 && device.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case device.MaxInputChannels > 0:
			deviceType = "Input"
		case device.MaxOutputChannels > 0:
			deviceType = "Output"
		}

		fmt.Printf("[%d] %s (%s)\n", i, device.Name, deviceType)
		fmt.Printf("    Input channels: %d, Output channels: %d\n",
			device.MaxInputChannels, device.MaxOutputChannels)
		fmt.Printf("    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Printf("    Latency: Low=%.2fms, High=%.2fms\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
		fmt.Println()
	}

	return nil
}
