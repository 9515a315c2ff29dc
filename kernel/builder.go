package kernel

import (
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

// A Builder can build kernel components.
type Builder struct {
	numFrames        int
	ptesPerDirectory int
	maxProcesses     int
	pageSize         uint64
	initialPID       vm.PID
}

// MakeBuilder creates a Builder with the default configuration: 128
// physical frames of 4096 bytes, 16 page-table entries per directory (256
// addressable virtual pages), at most 16 processes, and process 0 running.
func MakeBuilder() Builder {
	return Builder{
		numFrames:        128,
		ptesPerDirectory: 16,
		maxProcesses:     16,
		pageSize:         4096,
		initialPID:       0,
	}
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithPTEsPerDirectory sets the number of page-table entries per directory.
// The addressable virtual space is the square of this value.
func (b Builder) WithPTEsPerDirectory(n int) Builder {
	b.ptesPerDirectory = n
	return b
}

// WithMaxProcesses sets the largest number of processes the kernel accepts.
func (b Builder) WithMaxProcesses(n int) Builder {
	b.maxProcesses = n
	return b
}

// WithPageSize sets the size of a page in bytes.
func (b Builder) WithPageSize(n uint64) Builder {
	b.pageSize = n
	return b
}

// WithInitialPID sets the PID of the process that runs after Build.
func (b Builder) WithInitialPID(pid vm.PID) Builder {
	b.initialPID = pid
	return b
}

// Build creates a kernel component with the given name. The returned kernel
// has all frames free and one process running on an empty page table.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		pageSize:     b.pageSize,
		maxProcesses: b.maxProcesses,
		frames:       mem.NewFrameTable(b.numFrames),
		storage:      mem.NewStorage(b.numFrames, b.pageSize),
		ready:        NewReadySet(),
	}

	c.install(newProcess(b.initialPID, b.ptesPerDirectory))

	return c
}

func (b Builder) parametersMustBeValid() {
	if b.numFrames <= 0 {
		panic("kernel: number of frames must be positive")
	}

	if b.ptesPerDirectory <= 0 {
		panic("kernel: entries per directory must be positive")
	}

	if b.maxProcesses < 1 {
		panic("kernel: at least one process is required")
	}

	if b.pageSize == 0 {
		panic("kernel: page size must be positive")
	}
}
