// SPDX-License-Identifier: MIT
/*
Package vis implements the frame-synchronization layer between the audio
analyzer and the consumer loop. A Visualizer owns an analyzer step (a
closure over whatever analysis tools the consumer composes) and exposes a
pull-based frame iterator. The step runs either inline, once per consumer
iteration, or detached on its own goroutine at a target rate, publishing
results through a wait-free latest-value handoff that the consumer reads
without blocking and without ever observing a torn result.
*/
package vis

import (
	"viscore/internal/analyzer"
)

// Recorder is the capture-side collaborator: it owns the shared sample
// buffer its backend pushes into.
type Recorder interface {
	SampleBuffer() *analyzer.SampleBuffer
}

// AnalyzeFunc computes one analysis cycle from the trailing samples into
// info. It is always invoked on one goroutine at a time.
type AnalyzeFunc[R any] func(info *R, samples *analyzer.SampleBuffer)

// Visualizer configures the frame layer. R is the consumer-defined result
// type; newResult must return independent instances because the detached
// handoff rotates three of them.
type Visualizer[R any] struct {
	newResult func() R
	analyze   AnalyzeFunc[R]
	recorder  Recorder
	asyncRate float64
}

// New creates a Visualizer from a result factory and an analyzer step.
func New[R any](newResult func() R, analyze AnalyzeFunc[R]) *Visualizer[R] {
	return &Visualizer[R]{
		newResult: newResult,
		analyze:   analyze,
	}
}

// Recorder sets the capture backend providing the sample buffer.
func (v *Visualizer[R]) Recorder(r Recorder) *Visualizer[R] {
	v.recorder = r
	return v
}

// AsyncAnalyzer requests the analyzer step to run detached at the given
// number of conversions per second as soon as Frames is called.
func (v *Visualizer[R]) AsyncAnalyzer(conversionsPerSecond float64) *Visualizer[R] {
	v.asyncRate = conversionsPerSecond
	return v
}

// Frames builds the frame layer. A recorder must have been configured.
func (v *Visualizer[R]) Frames() *Frames[R] {
	if v.recorder == nil {
		panic("vis: no recorder configured")
	}
	if v.analyze == nil {
		panic("vis: no analyzer step configured")
	}

	f := &Frames[R]{
		analyze: v.analyze,
		buffer:  v.recorder.SampleBuffer(),
		slot:    newLatest(v.newResult),
		done:    make(chan struct{}),
	}
	if v.asyncRate > 0 {
		f.DetachAnalyzer(v.asyncRate)
	}
	return f
}
