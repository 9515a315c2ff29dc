package kernel

import (
	"fmt"
	"sort"

	"github.com/sarchlab/vmsim/vm"
)

// A ReadySet holds the processes that are not currently running. Each
// process ID appears at most once.
type ReadySet struct {
	procs map[vm.PID]*Process
}

// NewReadySet creates an empty ReadySet.
func NewReadySet() *ReadySet {
	return &ReadySet{procs: make(map[vm.PID]*Process)}
}

// Len returns the number of processes in the set.
func (s *ReadySet) Len() int {
	return len(s.procs)
}

// Add inserts a process. Inserting a PID that is already present is a
// bookkeeping defect and panics.
func (s *ReadySet) Add(p *Process) {
	if _, exists := s.procs[p.pid]; exists {
		panic(fmt.Sprintf("kernel: process %d is already in the ready set",
			p.pid))
	}

	s.procs[p.pid] = p
}

// Remove deletes the process with the given PID. Removing an absent PID is
// a bookkeeping defect and panics.
func (s *ReadySet) Remove(pid vm.PID) {
	if _, exists := s.procs[pid]; !exists {
		panic(fmt.Sprintf("kernel: process %d is not in the ready set", pid))
	}

	delete(s.procs, pid)
}

// Find returns the process with the given PID, if it is in the set.
func (s *ReadySet) Find(pid vm.PID) (*Process, bool) {
	p, exists := s.procs[pid]
	return p, exists
}

// PIDs returns the IDs of the processes in the set, in increasing order.
func (s *ReadySet) PIDs() []vm.PID {
	pids := make([]vm.PID, 0, len(s.procs))
	for pid := range s.procs {
		pids = append(pids, pid)
	}

	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	return pids
}

// Visit calls visit for every process in the set, in increasing PID order.
func (s *ReadySet) Visit(visit func(p *Process)) {
	for _, pid := range s.PIDs() {
		visit(s.procs[pid])
	}
}
