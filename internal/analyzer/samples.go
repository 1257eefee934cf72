// SPDX-License-Identifier: MIT
package analyzer

import (
	"fmt"
	"math"
	"sync"
)

// SampleBuffer is a synchronized ring buffer of stereo frames shared between
// the capture producer and the analyzer consumer. Its length is fixed at
// construction: every Push replaces the oldest frames one-for-one. While an
// iterator obtained from Iter is live the buffer stays locked so the view is
// frozen against concurrent pushes.
type SampleBuffer struct {
	mu   sync.Mutex
	buf  []Sample // ring storage, length never changes
	head int      // index of the oldest frame
	rate int
}

// NewSampleBuffer creates a zero-filled buffer holding size stereo frames
// recorded at the given sample rate.
func NewSampleBuffer(size, rate int) *SampleBuffer {
	if size <= 0 {
		panic(fmt.Sprintf("analyzer: sample buffer size must be positive, got %d", size))
	}
	if rate <= 0 {
		panic(fmt.Sprintf("analyzer: sample rate must be positive, got %d", rate))
	}
	return &SampleBuffer{
		buf:  make([]Sample, size),
		rate: rate,
	}
}

// Rate returns the sample rate the buffer was created with.
func (b *SampleBuffer) Rate() int { return b.rate }

// Len returns the fixed capacity of the buffer.
func (b *SampleBuffer) Len() int { return len(b.buf) }

// Push appends the given frames, evicting the oldest entry for each one.
// Safe to call from any goroutine.
func (b *SampleBuffer) Push(frames []Sample) {
	b.mu.Lock()
	for _, s := range frames {
		b.buf[b.head] = s
		b.head++
		if b.head == len(b.buf) {
			b.head = 0
		}
	}
	b.mu.Unlock()
}

// at returns the frame at logical position i, 0 being the oldest.
// Caller must hold the lock.
func (b *SampleBuffer) at(i int) Sample {
	i += b.head
	if i >= len(b.buf) {
		i -= len(b.buf)
	}
	return b.buf[i]
}

// Iter locks the buffer and returns an iterator over the last
// size*downsample frames with the given stride, yielding exactly size
// frames. The lock is held until the iterator is exhausted or closed, so
// consume it promptly. Requesting more frames than the buffer holds is a
// caller error and panics.
func (b *SampleBuffer) Iter(size, downsample int) SampleIterator {
	if size*downsample > len(b.buf) {
		panic(fmt.Sprintf("analyzer: iteration window %d*%d exceeds buffer size %d",
			size, downsample, len(b.buf)))
	}

	b.mu.Lock()
	return SampleIterator{
		buf:        b,
		index:      len(b.buf) - size*downsample,
		downsample: downsample,
		open:       true,
	}
}

// Volume computes the RMS volume of the mono mix over the last length
// seconds. Keep length short to avoid holding the lock for long.
//
// The mean square is divided by the total buffer length rather than the
// number of samples actually summed, so shorter windows read quieter.
// Downstream scaling relies on this; do not "fix" the denominator.
func (b *SampleBuffer) Volume(length float64) SignalStrength {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.buf)
	window := b.rate / int(1.0/length)
	if window > n {
		panic(fmt.Sprintf("analyzer: volume window %d exceeds buffer size %d", window, n))
	}

	var sum SignalStrength
	for i := n - window; i < n; i++ {
		s := b.at(i)
		mono := (s[0] + s[1]) / 2
		sum += mono * mono
	}
	return math.Sqrt(sum / SignalStrength(n))
}

// SampleIterator walks a frozen view of a SampleBuffer. The zero value is
// not usable; obtain one from SampleBuffer.Iter.
type SampleIterator struct {
	buf        *SampleBuffer
	index      int
	downsample int
	open       bool
}

// Next returns the next downsampled frame. When the view is exhausted it
// releases the buffer lock and reports false.
func (it *SampleIterator) Next() (Sample, bool) {
	if !it.open {
		return Sample{}, false
	}
	if it.index >= len(it.buf.buf) {
		it.Close()
		return Sample{}, false
	}
	s := it.buf.at(it.index)
	it.index += it.downsample
	return s, true
}

// Close releases the buffer lock early. Calling it after exhaustion or a
// previous Close is a no-op.
func (it *SampleIterator) Close() {
	if it.open {
		it.open = false
		it.buf.mu.Unlock()
	}
}
