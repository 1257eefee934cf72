// SPDX-License-Identifier: MIT
package recorder

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-audio/wav"

	"viscore/internal/analyzer"
	applog "viscore/internal/log"
)

// WAVFileRecorder replays a WAV file into its sample buffer at the file's
// own rate, looping when it reaches the end. It stands in for a live
// capture device when analyzing recorded material.
type WAVFileRecorder struct {
	buffer *analyzer.SampleBuffer

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// OpenWAVFile decodes the file up front and starts the feeder goroutine.
// The configured rate is ignored; the ring adopts the file's sample rate so
// analyzers planned against it stay consistent.
func OpenWAVFile(path string, cfg Config) (*WAVFileRecorder, error) {
	cfg.applyDefaults()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if pcm.Format == nil || len(pcm.Data) == 0 {
		return nil, fmt.Errorf("no audio data in %s", path)
	}

	depth := pcm.SourceBitDepth
	if depth == 0 {
		depth = 16
	}
	scale := float64(int64(1) << (depth - 1))

	channels := pcm.Format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("unsupported channel count %d in %s", channels, path)
	}

	numFrames := len(pcm.Data) / channels
	frames := make([]analyzer.Sample, numFrames)
	for i := 0; i < numFrames; i++ {
		if channels == 1 {
			v := float64(pcm.Data[i]) / scale
			frames[i] = analyzer.Sample{v, v}
		} else {
			frames[i] = analyzer.Sample{
				float64(pcm.Data[2*i]) / scale,
				float64(pcm.Data[2*i+1]) / scale,
			}
		}
	}

	rate := pcm.Format.SampleRate
	r := &WAVFileRecorder{
		buffer: analyzer.NewSampleBuffer(cfg.Buffer, rate),
		done:   make(chan struct{}),
	}

	applog.Infof("Recorder: replaying %s (%d frames, %d Hz, %d-bit, %d channel)",
		path, numFrames, rate, depth, channels)

	r.wg.Add(1)
	go r.feed(frames, cfg.ReadSize, rate)

	return r, nil
}

// SampleBuffer returns the shared buffer this recorder pushes into.
func (r *WAVFileRecorder) SampleBuffer() *analyzer.SampleBuffer {
	return r.buffer
}

// Close stops the feeder goroutine and waits for it to finish.
func (r *WAVFileRecorder) Close() error {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	return nil
}

// feed pushes readSize frames per tick, pacing the replay to the file's
// real-time rate.
func (r *WAVFileRecorder) feed(frames []analyzer.Sample, readSize, rate int) {
	defer r.wg.Done()

	ticker := time.NewTicker(time.Duration(readSize) * time.Second / time.Duration(rate))
	defer ticker.Stop()

	pos := 0
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			end := pos + readSize
			if end > len(frames) {
				end = len(frames)
			}
			r.buffer.Push(frames[pos:end])
			pos = end
			if pos >= len(frames) {
				pos = 0 // loop the file
			}
		}
	}
}
