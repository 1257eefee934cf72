// SPDX-License-Identifier: MIT
package vis

import (
	"sync"
	"time"

	"viscore/internal/analyzer"
	applog "viscore/internal/log"
)

// Frames runs the analyzer step and hands results to the consumer loop.
// Obtain one from Visualizer.Frames.
type Frames[R any] struct {
	analyze AnalyzeFunc[R]
	buffer  *analyzer.SampleBuffer
	slot    *latest[R]

	detached bool
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// DetachAnalyzer moves the analyzer step onto its own goroutine running at
// the given target rate. Each cycle computes into a free slot, publishes
// it, and sleeps whatever remains of its period budget; an overrunning
// cycle re-runs immediately. After detaching, the frame iterator only reads
// the latest published result. Call Close to stop the goroutine.
func (f *Frames[R]) DetachAnalyzer(conversionsPerSecond float64) {
	if f.detached {
		applog.Warnf("Vis: analyzer already detached")
		return
	}
	f.detached = true

	period := time.Duration(float64(time.Second) / conversionsPerSecond)
	applog.Debugf("Vis: detaching analyzer (%.1f conversions/s, period %s)",
		conversionsPerSecond, period)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-f.done:
				return
			default:
			}

			start := time.Now()
			f.analyze(f.slot.writeSlot(), f.buffer)
			f.slot.publish()

			if remaining := period - time.Since(start); remaining > 0 {
				select {
				case <-f.done:
					return
				case <-time.After(remaining):
				}
			}
		}
	}()
}

// Close stops the detached analyzer goroutine, if any, and waits for it to
// finish. Safe to call multiple times and on inline-mode Frames.
func (f *Frames[R]) Close() {
	f.stopOnce.Do(func() {
		close(f.done)
	})
	f.wg.Wait()
}

// Iter returns the infinite frame iterator the consumer loop pulls from.
func (f *Frames[R]) Iter() *FramesIter[R] {
	return &FramesIter[R]{
		frames: f,
		start:  time.Now(),
	}
}

// FramesIter produces one Frame per call to Next, forever.
type FramesIter[R any] struct {
	frames *Frames[R]
	start  time.Time
	frame  int
}

// Next produces the next frame. In inline mode it runs the analyzer step;
// in detached mode it only picks up whatever the background goroutine most
// recently published.
func (it *FramesIter[R]) Next() Frame[R] {
	f := it.frames
	if !f.detached {
		f.analyze(f.slot.writeSlot(), f.buffer)
		f.slot.publish()
	}

	frame := Frame[R]{
		Time:  time.Since(it.start).Seconds(),
		Frame: it.frame,
		slot:  f.slot,
	}
	it.frame++
	return frame
}

// Frame is one iteration of the consumer loop: the elapsed time since the
// iterator was created, a monotonically increasing index, and read access
// to the latest analysis result.
type Frame[R any] struct {
	Time  float64
	Frame int
	slot  *latest[R]
}

// Info grants scoped read access to the latest published result. The
// pointer must not be retained or mutated past the callback.
func (f Frame[R]) Info(fn func(*R)) {
	fn(f.slot.readSlot())
}
