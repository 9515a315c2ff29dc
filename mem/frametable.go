// Package mem models the physical side of the simulated memory system, with
// a frame table that tracks per-frame reference counts and a storage that
// keeps the content of the frames.
package mem

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/vm"
)

// ErrOutOfFrames is returned when no free physical frame is available.
var ErrOutOfFrames = errors.New("mem: out of physical frames")

// A FrameTable tracks, for every physical frame, how many page-table entries
// across all processes currently map the frame. A count of zero means the
// frame is free.
type FrameTable struct {
	counts []uint32
}

// NewFrameTable creates a FrameTable with the given number of frames, all
// free.
func NewFrameTable(numFrames int) *FrameTable {
	if numFrames <= 0 {
		panic("mem: number of frames must be positive")
	}

	return &FrameTable{counts: make([]uint32, numFrames)}
}

// NumFrames returns the total number of physical frames.
func (t *FrameTable) NumFrames() int {
	return len(t.counts)
}

// NumFree returns the number of frames that no entry maps.
func (t *FrameTable) NumFree() int {
	free := 0
	for _, count := range t.counts {
		if count == 0 {
			free++
		}
	}

	return free
}

// FindFree returns the lowest-numbered free frame. The frame is not claimed
// until the caller calls Retain.
func (t *FrameTable) FindFree() (vm.PFN, error) {
	for pfn, count := range t.counts {
		if count == 0 {
			return vm.PFN(pfn), nil
		}
	}

	return 0, ErrOutOfFrames
}

// Retain records one more mapping of the given frame.
func (t *FrameTable) Retain(pfn vm.PFN) {
	t.frameMustBeInRange(pfn)

	t.counts[pfn]++
}

// Release records that one mapping of the given frame is gone. Releasing a
// free frame is a bookkeeping defect and panics.
func (t *FrameTable) Release(pfn vm.PFN) {
	t.frameMustBeInRange(pfn)

	if t.counts[pfn] == 0 {
		panic(fmt.Sprintf("mem: releasing frame %d, which is already free", pfn))
	}

	t.counts[pfn]--
}

// RefCount returns the number of mappings of the given frame.
func (t *FrameTable) RefCount(pfn vm.PFN) uint32 {
	t.frameMustBeInRange(pfn)

	return t.counts[pfn]
}

// Counts returns a copy of the per-frame reference counts, indexed by frame
// number.
func (t *FrameTable) Counts() []uint32 {
	counts := make([]uint32, len(t.counts))
	copy(counts, t.counts)

	return counts
}

func (t *FrameTable) frameMustBeInRange(pfn vm.PFN) {
	if int(pfn) >= len(t.counts) {
		panic(fmt.Sprintf("mem: frame %d out of range, %d frames exist",
			pfn, len(t.counts)))
	}
}
