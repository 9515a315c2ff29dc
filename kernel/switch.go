package kernel

import "github.com/sarchlab/vmsim/vm"

// SwitchProcess makes the process with the given PID the running process.
// If the PID names a process in the ready set, the two processes trade
// places. Otherwise a new process with that PID is forked from the running
// one and starts to run.
//
// Forking copies the parent's page table into the child. Every frame the
// parent maps gains one reference, and every writable mapping is demoted to
// a read-only copy-on-write mapping in both the parent and the child.
// ErrTooManyProcesses is returned when a fork would exceed the process
// limit.
func (c *Comp) SwitchProcess(pid vm.PID) error {
	c.lock.Lock()
	info, err := c.switchProcess(pid)
	c.lock.Unlock()

	if err != nil {
		return err
	}

	pos := HookPosProcessSwitch
	if info.Kind == OpFork {
		pos = HookPosProcessFork
	}
	c.invokeOpHook(pos, info)

	return nil
}

func (c *Comp) switchProcess(pid vm.PID) (OpInfo, error) {
	prev := c.current.pid
	if pid == prev {
		return OpInfo{Kind: OpSwitch, PID: pid, PrevPID: prev}, nil
	}

	if next, found := c.ready.Find(pid); found {
		c.ready.Remove(pid)
		c.ready.Add(c.current)
		c.install(next)

		return OpInfo{Kind: OpSwitch, PID: pid, PrevPID: prev}, nil
	}

	if c.numProcesses() >= c.maxProcesses {
		return OpInfo{}, ErrTooManyProcesses
	}

	child := c.fork(pid)
	c.ready.Add(c.current)
	c.install(child)

	return OpInfo{Kind: OpFork, PID: pid, PrevPID: prev}, nil
}

func (c *Comp) fork(pid vm.PID) *Process {
	child := newProcess(pid, c.ptbr.EntriesPerDirectory())

	c.ptbr.VisitValid(func(vpn vm.VPN, pte *vm.PTE) {
		c.frames.Retain(pte.Frame)

		if pte.Writable {
			pte.Writable = false
			pte.Private = true
		}

		childPTE := child.pageTable.EntryForAlloc(vpn)
		childPTE.Valid = true
		childPTE.Writable = pte.Writable
		childPTE.Private = pte.Private
		childPTE.Frame = pte.Frame
	})

	return child
}
