package kernel

import "github.com/sarchlab/vmsim/vm"

// A Process is one simulated process, an ID paired with the page table that
// maps its address space. At any time a process is either running on the
// kernel or waiting in the ready set.
type Process struct {
	pid       vm.PID
	pageTable *vm.PageTable
}

func newProcess(pid vm.PID, entriesPerDirectory int) *Process {
	return &Process{
		pid:       pid,
		pageTable: vm.NewPageTable(entriesPerDirectory),
	}
}

// PID returns the process ID.
func (p *Process) PID() vm.PID {
	return p.pid
}

// PageTable returns the page table of the process.
func (p *Process) PageTable() *vm.PageTable {
	return p.pageTable
}
