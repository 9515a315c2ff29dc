package kernel

import (
	"sync"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

// A Comp is the kernel component. It owns the frame table, the frame
// contents, the processes, and the page-table base register of the running
// process.
//
// Operations are synchronous and single-actor. The internal lock only makes
// the inspection accessors safe to call from a monitoring goroutine while a
// run is in progress.
type Comp struct {
	*hooking.HookableBase

	name string
	lock sync.Mutex

	pageSize     uint64
	maxProcesses int

	frames  *mem.FrameTable
	storage *mem.Storage

	current *Process
	ready   *ReadySet
	ptbr    *vm.PageTable
}

// A Mapping reports one valid page-table entry of a process.
type Mapping struct {
	VPN      vm.VPN `json:"vpn"`
	PFN      vm.PFN `json:"pfn"`
	Writable bool   `json:"writable"`
	Private  bool   `json:"private"`
}

// Name returns the name of the component.
func (c *Comp) Name() string {
	return c.name
}

// PageSize returns the size of a page in bytes.
func (c *Comp) PageSize() uint64 {
	return c.pageSize
}

// MaxProcesses returns the largest number of processes the kernel accepts.
func (c *Comp) MaxProcesses() int {
	return c.maxProcesses
}

// NumFrames returns the total number of physical frames.
func (c *Comp) NumFrames() int {
	return c.frames.NumFrames()
}

// Storage returns the content of the physical frames.
func (c *Comp) Storage() *mem.Storage {
	return c.storage
}

// Current returns the PID of the running process.
func (c *Comp) Current() vm.PID {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.current.pid
}

// NumProcesses returns the number of processes, including the running one.
func (c *Comp) NumProcesses() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.numProcesses()
}

// Processes returns the PIDs of all the processes. The running process
// comes first, the ready ones follow in increasing PID order.
func (c *Comp) Processes() []vm.PID {
	c.lock.Lock()
	defer c.lock.Unlock()

	pids := []vm.PID{c.current.pid}
	pids = append(pids, c.ready.PIDs()...)

	return pids
}

// Mappings returns the valid mappings of the given process in increasing
// virtual-page order. The second return value is false if the process does
// not exist.
func (c *Comp) Mappings(pid vm.PID) ([]Mapping, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	p, found := c.findProcess(pid)
	if !found {
		return nil, false
	}

	mappings := []Mapping{}
	p.pageTable.VisitValid(func(vpn vm.VPN, pte *vm.PTE) {
		mappings = append(mappings, Mapping{
			VPN:      vpn,
			PFN:      pte.Frame,
			Writable: pte.Writable,
			Private:  pte.Private,
		})
	})

	return mappings, true
}

// FrameCounts returns the per-frame reference counts, indexed by frame
// number.
func (c *Comp) FrameCounts() []uint32 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.frames.Counts()
}

// NumFreeFrames returns the number of free physical frames.
func (c *Comp) NumFreeFrames() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.frames.NumFree()
}

// AllocPage maps the given virtual page of the running process to the
// lowest-numbered free frame, zeroing the frame. The page is writable if
// the mode includes the write permission. ErrPageMapped is returned if the
// page is already mapped and mem.ErrOutOfFrames if no frame is free.
func (c *Comp) AllocPage(vpn vm.VPN, mode vm.AccessMode) (vm.PFN, error) {
	c.lock.Lock()
	info, err := c.allocPage(vpn, mode)
	c.lock.Unlock()

	if err != nil {
		return 0, err
	}

	c.invokeOpHook(HookPosPageAlloc, info)

	return info.PFN, nil
}

// FreePage unmaps the given virtual page of the running process and drops
// its reference on the backing frame. ErrInvalidPage is returned if the
// page is not mapped.
func (c *Comp) FreePage(vpn vm.VPN) error {
	c.lock.Lock()
	info, err := c.freePage(vpn)
	c.lock.Unlock()

	if err != nil {
		return err
	}

	c.invokeOpHook(HookPosPageFree, info)

	return nil
}

func (c *Comp) allocPage(vpn vm.VPN, mode vm.AccessMode) (OpInfo, error) {
	pte := c.ptbr.EntryForAlloc(vpn)
	if pte.Valid {
		return OpInfo{}, ErrPageMapped
	}

	pfn, err := c.frames.FindFree()
	if err != nil {
		return OpInfo{}, err
	}

	pte.Valid = true
	pte.Writable = mode.IsWrite()
	pte.Private = false
	pte.Frame = pfn

	c.frames.Retain(pfn)
	c.mustZeroFrame(pfn)

	return OpInfo{
		Kind: OpAlloc,
		PID:  c.current.pid,
		VPN:  vpn,
		PFN:  pfn,
		Mode: mode,
	}, nil
}

func (c *Comp) freePage(vpn vm.VPN) (OpInfo, error) {
	pte, ok := c.ptbr.Entry(vpn)
	if !ok || !pte.Valid {
		return OpInfo{}, ErrInvalidPage
	}

	pfn := pte.Frame
	c.frames.Release(pfn)
	pte.Reset()

	return OpInfo{
		Kind: OpFree,
		PID:  c.current.pid,
		VPN:  vpn,
		PFN:  pfn,
	}, nil
}

func (c *Comp) findProcess(pid vm.PID) (*Process, bool) {
	if c.current.pid == pid {
		return c.current, true
	}

	return c.ready.Find(pid)
}

func (c *Comp) numProcesses() int {
	return c.ready.Len() + 1
}

func (c *Comp) install(p *Process) {
	c.current = p
	c.ptbr = p.pageTable
}

func (c *Comp) mustZeroFrame(pfn vm.PFN) {
	err := c.storage.ZeroFrame(pfn)
	if err != nil {
		panic(err)
	}
}

func (c *Comp) invokeOpHook(pos *hooking.HookPos, info OpInfo) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   info,
	})
}
