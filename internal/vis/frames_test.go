// SPDX-License-Identifier: MIT
package vis

import (
	"sync/atomic"
	"testing"
	"time"

	"viscore/internal/analyzer"
)

type stubRecorder struct {
	buf *analyzer.SampleBuffer
}

func (r *stubRecorder) SampleBuffer() *analyzer.SampleBuffer { return r.buf }

type countResult struct {
	cycle uint64
}

// newCountingVisualizer builds a visualizer whose step stamps a shared
// atomic counter into the result.
func newCountingVisualizer(calls *atomic.Uint64) *Visualizer[countResult] {
	return New(
		func() countResult { return countResult{} },
		func(info *countResult, samples *analyzer.SampleBuffer) {
			info.cycle = calls.Add(1)
		},
	).Recorder(&stubRecorder{buf: analyzer.NewSampleBuffer(64, 8000)})
}

func TestFrames_NoRecorderPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic without a recorder")
		}
	}()
	New(
		func() countResult { return countResult{} },
		func(info *countResult, samples *analyzer.SampleBuffer) {},
	).Frames()
}

func TestFrames_InlineRunsStepPerIteration(t *testing.T) {
	t.Parallel()
	var calls atomic.Uint64
	frames := newCountingVisualizer(&calls).Frames()
	defer frames.Close()

	iter := frames.Iter()
	for i := 0; i < 5; i++ {
		frame := iter.Next()
		if frame.Frame != i {
			t.Errorf("expected frame index %d, got %d", i, frame.Frame)
		}
		frame.Info(func(r *countResult) {
			if r.cycle != uint64(i+1) {
				t.Errorf("frame %d: expected analysis cycle %d, got %d", i, i+1, r.cycle)
			}
		})
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("expected 5 analyzer calls, got %d", got)
	}
}

func TestFrames_TimeIsMonotonic(t *testing.T) {
	t.Parallel()
	var calls atomic.Uint64
	frames := newCountingVisualizer(&calls).Frames()
	defer frames.Close()

	iter := frames.Iter()
	prev := -1.0
	for i := 0; i < 10; i++ {
		frame := iter.Next()
		if frame.Time < prev {
			t.Errorf("frame time went backwards: %g after %g", frame.Time, prev)
		}
		prev = frame.Time
	}
}

func TestFrames_DetachedRunsWithoutConsumer(t *testing.T) {
	t.Parallel()
	var calls atomic.Uint64
	frames := newCountingVisualizer(&calls).AsyncAnalyzer(500).Frames()
	defer frames.Close()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if calls.Load() < 3 {
		t.Fatal("detached analyzer did not run")
	}

	// The iterator only picks up published results, it never runs the step.
	before := calls.Load()
	frame := frames.Iter().Next()
	frame.Info(func(r *countResult) {
		if r.cycle == 0 {
			t.Error("detached frame carried no published result")
		}
	})
	if after := calls.Load(); after < before {
		t.Errorf("call counter went backwards: %d -> %d", before, after)
	}
}

func TestFrames_CloseStopsDetachedAnalyzer(t *testing.T) {
	t.Parallel()
	var calls atomic.Uint64
	frames := newCountingVisualizer(&calls).AsyncAnalyzer(1000).Frames()

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	frames.Close()
	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	if calls.Load() != stopped {
		t.Error("analyzer step still running after Close")
	}

	frames.Close() // idempotent
}
