package kernel

import "github.com/sarchlab/vmsim/vm"

// Translate walks the page table of the running process and returns the
// frame that backs the given virtual page. ErrPageFault is returned when
// the page is not mapped or when a write access hits a read-only mapping.
// The caller may then try HandlePageFault and translate again.
func (c *Comp) Translate(vpn vm.VPN, mode vm.AccessMode) (vm.PFN, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	pte, ok := c.ptbr.Entry(vpn)
	if !ok || !pte.Valid {
		return 0, ErrPageFault
	}

	if mode.IsWrite() && !pte.Writable {
		return 0, ErrPageFault
	}

	return pte.Frame, nil
}

// HandlePageFault tries to recover from a failed access to the given
// virtual page. The only recoverable case is a write to a copy-on-write
// protected entry. When the faulting entry is the sole mapping of its
// frame, the entry is made writable in place. When the frame is shared, its
// content is copied into a fresh frame and the entry is moved there.
//
// ErrUnresolvableFault is returned for all other faults and
// mem.ErrOutOfFrames when a copy is needed but no frame is free.
func (c *Comp) HandlePageFault(vpn vm.VPN, mode vm.AccessMode) error {
	c.lock.Lock()
	info, err := c.handlePageFault(vpn, mode)
	c.lock.Unlock()

	if err != nil {
		return err
	}

	c.invokeOpHook(HookPosPageFault, info)

	return nil
}

func (c *Comp) handlePageFault(
	vpn vm.VPN,
	mode vm.AccessMode,
) (OpInfo, error) {
	if !mode.IsWrite() {
		return OpInfo{}, ErrUnresolvableFault
	}

	pte, ok := c.ptbr.Entry(vpn)
	if !ok || !pte.Valid {
		return OpInfo{}, ErrUnresolvableFault
	}

	if pte.Writable || !pte.Private {
		return OpInfo{}, ErrUnresolvableFault
	}

	info := OpInfo{
		Kind: OpFault,
		PID:  c.current.pid,
		VPN:  vpn,
		Mode: mode,
	}

	if c.frames.RefCount(pte.Frame) == 1 {
		pte.Writable = true
		pte.Private = false

		info.PFN = pte.Frame
		info.Resolution = ResolutionPromoted

		return info, nil
	}

	return c.copyOnWrite(pte, info)
}

// copyOnWrite moves the faulting entry to a private copy of its frame. The
// content must be copied before the entry is retargeted, so that the other
// mappings keep seeing the bytes they shared.
func (c *Comp) copyOnWrite(pte *vm.PTE, info OpInfo) (OpInfo, error) {
	newPFN, err := c.frames.FindFree()
	if err != nil {
		return OpInfo{}, err
	}

	oldPFN := pte.Frame

	err = c.storage.CopyFrame(newPFN, oldPFN)
	if err != nil {
		panic(err)
	}

	c.frames.Release(oldPFN)
	c.frames.Retain(newPFN)

	pte.Frame = newPFN
	pte.Writable = true
	pte.Private = false

	info.PFN = newPFN
	info.OldPFN = oldPFN
	info.Resolution = ResolutionCopied

	return info, nil
}
