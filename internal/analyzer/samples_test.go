// SPDX-License-Identifier: MIT
package analyzer

import (
	"math"
	"testing"
)

// ramp returns n frames whose both channels carry the frame index.
func ramp(n int) []Sample {
	frames := make([]Sample, n)
	for i := range frames {
		frames[i] = Sample{float64(i), float64(i)}
	}
	return frames
}

func TestSampleBuffer_LengthInvariant(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(8, 8000)

	if b.Len() != 8 {
		t.Fatalf("expected length 8, got %d", b.Len())
	}

	b.Push(ramp(3))
	if b.Len() != 8 {
		t.Errorf("length changed to %d after partial push", b.Len())
	}

	b.Push(ramp(20))
	if b.Len() != 8 {
		t.Errorf("length changed to %d after oversized push", b.Len())
	}
}

func TestSampleBuffer_IterDownsample(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(32, 8000)
	b.Push(ramp(32))

	// 7 frames at stride 4 from a 32 frame buffer start at index 4.
	want := []float64{4, 8, 12, 16, 20, 24, 28}

	it := b.Iter(7, 4)
	got := make([]float64, 0, 7)
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, s[0])
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d: expected %g, got %g", i, want[i], got[i])
		}
	}

	// The lock must be free again once the iterator is exhausted.
	b.Push(ramp(1))
}

func TestSampleBuffer_Overflow(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(4, 8000)
	b.Push(ramp(6)) // 0..5, oldest two evicted

	it := b.Iter(4, 1)
	want := []float64{2, 3, 4, 5}
	for i, w := range want {
		s, ok := it.Next()
		if !ok {
			t.Fatalf("iterator exhausted at frame %d", i)
		}
		if s[0] != w {
			t.Errorf("frame %d: expected %g, got %g", i, w, s[0])
		}
	}
	if _, ok := it.Next(); ok {
		t.Error("iterator yielded more frames than requested")
	}
}

func TestSampleBuffer_IterTooLargePanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized iteration window")
		}
	}()
	b := NewSampleBuffer(16, 8000)
	b.Iter(5, 4) // 20 > 16
}

func TestSampleBuffer_IterCloseReleasesLock(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(16, 8000)
	b.Push(ramp(16))

	it := b.Iter(8, 2)
	if _, ok := it.Next(); !ok {
		t.Fatal("expected at least one frame")
	}
	it.Close()

	if _, ok := it.Next(); ok {
		t.Error("closed iterator still yields frames")
	}
	it.Close() // no-op

	b.Push(ramp(1)) // would deadlock if the lock were still held
}

func TestSampleBuffer_Volume(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(8, 8)
	frames := make([]Sample, 8)
	for i := range frames {
		frames[i] = Sample{1, 1}
	}
	b.Push(frames)

	// Full window over a unit signal: sqrt(8/8) = 1.
	if v := b.Volume(1.0); math.Abs(v-1) > 1e-12 {
		t.Errorf("expected volume 1, got %g", v)
	}
}

func TestSampleBuffer_VolumeNormalizesByTotalLength(t *testing.T) {
	t.Parallel()
	b := NewSampleBuffer(16, 8)
	frames := make([]Sample, 16)
	for i := range frames {
		frames[i] = Sample{1, 1}
	}
	b.Push(frames)

	// The window covers 8 of 16 frames, but the mean square divides by the
	// full buffer length: sqrt(8/16).
	want := math.Sqrt(0.5)
	if v := b.Volume(1.0); math.Abs(v-want) > 1e-12 {
		t.Errorf("expected volume %g, got %g", want, v)
	}
}

func TestSampleBuffer_VolumeWindowTooLargePanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for oversized volume window")
		}
	}()
	b := NewSampleBuffer(4, 8000)
	b.Volume(1.0) // window 8000 > 4
}

func TestNewSampleBuffer_InvalidArgsPanic(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name       string
		size, rate int
	}{
		{"zero size", 0, 8000},
		{"negative size", -1, 8000},
		{"zero rate", 16, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for %s", tc.name)
				}
			}()
			NewSampleBuffer(tc.size, tc.rate)
		})
	}
}

func TestSampleBuffer_IterZeroAllocs(t *testing.T) {
	b := NewSampleBuffer(1024, 8000)
	b.Push(ramp(1024))

	allocs := testing.AllocsPerRun(100, func() {
		it := b.Iter(256, 4)
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
	})
	if allocs > 0 {
		t.Errorf("expected zero allocations iterating, got %.1f", allocs)
	}
}
