// SPDX-License-Identifier: MIT
package vis

import "sync/atomic"

const (
	slotMask = 0b011
	freshBit = 0b100
)

// latest is a wait-free latest-value slot for one writer and one reader.
// Three result instances rotate between a writer-owned slot, a reader-owned
// slot and a middle slot; state packs the middle slot's index with a fresh
// flag and every transition is a single atomic swap. Writer and reader
// never own the same slot at the same time, so the reader can never observe
// a partially written result.
type latest[R any] struct {
	slots [3]*R
	state atomic.Uint32

	write int // writer-owned slot, only touched by the writer
	read  int // reader-owned slot, only touched by the reader
}

// newLatest builds the slot rotation from three independent results.
func newLatest[R any](newResult func() R) *latest[R] {
	l := &latest[R]{write: 0, read: 2}
	for i := range l.slots {
		r := newResult()
		l.slots[i] = &r
	}
	l.state.Store(1) // middle slot, not fresh
	return l
}

// writeSlot returns the result instance the writer may fill next.
func (l *latest[R]) writeSlot() *R { return l.slots[l.write] }

// publish hands the filled write slot to the reader side and claims the
// previous middle slot for the next write.
func (l *latest[R]) publish() {
	old := l.state.Swap(uint32(l.write) | freshBit)
	l.write = int(old & slotMask)
}

// readSlot returns the most recently published result. If nothing new was
// published since the last call it returns the same instance again.
func (l *latest[R]) readSlot() *R {
	if l.state.Load()&freshBit != 0 {
		old := l.state.Swap(uint32(l.read))
		l.read = int(old & slotMask)
	}
	return l.slots[l.read]
}
