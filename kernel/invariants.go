package kernel

import (
	"fmt"

	"github.com/sarchlab/vmsim/vm"
)

// VerifyRefCounts recounts the valid page-table entries of every process
// and compares the result against the frame table. It returns nil when
// every frame's reference count equals the number of entries that map the
// frame, and an error naming the first mismatching frame otherwise.
func (c *Comp) VerifyRefCounts() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	expected := make([]uint32, c.frames.NumFrames())

	countTable := func(t *vm.PageTable) {
		t.VisitValid(func(_ vm.VPN, pte *vm.PTE) {
			expected[pte.Frame]++
		})
	}

	countTable(c.current.pageTable)
	c.ready.Visit(func(p *Process) {
		countTable(p.pageTable)
	})

	for pfn, want := range expected {
		got := c.frames.RefCount(vm.PFN(pfn))
		if got != want {
			return fmt.Errorf(
				"kernel: frame %d has reference count %d, but %d mappings exist",
				pfn, got, want)
		}
	}

	return nil
}
