// SPDX-License-Identifier: MIT
package recorder

import (
	"github.com/gordonklaus/portaudio"

	"viscore/internal/analyzer"
	applog "viscore/internal/log"
)

// PortAudioRecorder captures live stereo input through PortAudio and pushes
// it into its sample buffer from the audio callback. The callback uses only
// pre-allocated buffers; no allocation happens on the capture hot path.
type PortAudioRecorder struct {
	buffer *analyzer.SampleBuffer
	stream *portaudio.Stream
	frames []analyzer.Sample // conversion scratch, ReadSize long

	tap tap // optional WAV capture tap
}

// OpenPortAudio resolves the configured input device and opens (but does
// not start) a stereo capture stream at the configured rate.
func OpenPortAudio(cfg Config) (*PortAudioRecorder, error) {
	cfg.applyDefaults()

	device, err := InputDevice(cfg.Device)
	if err != nil {
		return nil, err
	}

	r := &PortAudioRecorder{
		buffer: analyzer.NewSampleBuffer(cfg.Buffer, cfg.Rate),
		frames: make([]analyzer.Sample, cfg.ReadSize),
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 2,
			Latency:  device.DefaultHighInputLatency,
		},
		FramesPerBuffer: cfg.ReadSize,
		SampleRate:      float64(cfg.Rate),
	}

	stream, err := portaudio.OpenStream(params, r.capture)
	if err != nil {
		return nil, err
	}
	r.stream = stream

	applog.Debugf("Recorder: PortAudio stream open (device=%q rate=%d buffer=%d read=%d)",
		device.Name, cfg.Rate, cfg.Buffer, cfg.ReadSize)

	return r, nil
}

// SampleBuffer returns the shared buffer this recorder pushes into.
func (r *PortAudioRecorder) SampleBuffer() *analyzer.SampleBuffer {
	return r.buffer
}

// Start begins capture. The PortAudio callback thread starts pushing
// frames immediately.
func (r *PortAudioRecorder) Start() error {
	return r.stream.Start()
}

// Close stops the stream, releases it and finishes any active recording.
func (r *PortAudioRecorder) Close() error {
	if err := r.tap.stop(); err != nil {
		applog.Errorf("Recorder: stopping capture tap: %v", err)
	}
	if r.stream == nil {
		return nil
	}
	if err := r.stream.Stop(); err != nil {
		return err
	}
	err := r.stream.Close()
	r.stream = nil
	return err
}

// StartRecording begins mirroring the captured stream into a WAV file.
func (r *PortAudioRecorder) StartRecording(filename string) error {
	return r.tap.start(filename, r.buffer.Rate(), len(r.frames))
}

// StopRecording finishes the WAV file, if one is being written.
func (r *PortAudioRecorder) StopRecording() error {
	return r.tap.stop()
}

// capture is the PortAudio input callback. Performance critical: runs on
// the audio thread with pre-allocated buffers only.
func (r *PortAudioRecorder) capture(in []float32) {
	n := len(in) / 2
	if n > len(r.frames) {
		n = len(r.frames)
	}
	for i := 0; i < n; i++ {
		r.frames[i] = analyzer.Sample{
			float64(in[2*i]),
			float64(in[2*i+1]),
		}
	}
	r.buffer.Push(r.frames[:n])
	r.tap.write(r.frames[:n])
}
