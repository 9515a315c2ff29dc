// Package driver executes line-oriented scripts against a memory
// management kernel, resolving page faults the way a CPU-side handler
// would.
package driver

import (
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/vm"
)

// A Driver feeds scripted memory operations into a kernel component. It
// translates accesses, invokes the page-fault handler when a translation
// fails, and reports the outcome of each line.
type Driver struct {
	kernel *kernel.Comp
	out    io.Writer
	check  bool
}

// NewDriver creates a driver on a kernel component. Output is discarded
// until WithOutput is called.
func NewDriver(k *kernel.Comp) *Driver {
	return &Driver{
		kernel: k,
		out:    io.Discard,
	}
}

// WithOutput sets the writer that per-line results are printed to.
func (d *Driver) WithOutput(w io.Writer) *Driver {
	d.out = w
	return d
}

// WithCheck makes the driver verify the frame reference counts after
// every executed command. A violated invariant aborts the script.
func (d *Driver) WithCheck() *Driver {
	d.check = true
	return d
}

// Kernel returns the kernel component the driver operates on.
func (d *Driver) Kernel() *kernel.Comp {
	return d.kernel
}

// Run parses and executes a script. A malformed line stops the run. A
// line whose operation fails is reported and the run continues. In check
// mode a reference-count violation stops the run.
func (d *Driver) Run(r io.Reader) error {
	commands, err := ParseScript(r)
	if err != nil {
		return err
	}

	return d.RunCommands(commands)
}

// RunCommands executes parsed commands in order, stopping only on a
// reference-count violation in check mode.
func (d *Driver) RunCommands(commands []Command) error {
	for _, cmd := range commands {
		if err := d.RunCommand(cmd); err != nil {
			return err
		}
	}

	return nil
}

// RunCommand executes one command, reporting a failed operation to the
// output. In check mode the frame reference counts are verified afterwards
// and a violation is returned.
func (d *Driver) RunCommand(cmd Command) error {
	if err := d.Execute(cmd); err != nil {
		fmt.Fprintf(d.out, "line %d: %v\n", cmd.Line, err)
	}

	if d.check {
		if err := d.kernel.VerifyRefCounts(); err != nil {
			return fmt.Errorf("after line %d: %w", cmd.Line, err)
		}
	}

	return nil
}

// Execute runs one command. The returned error is the per-line failure,
// already suitable for reporting.
func (d *Driver) Execute(cmd Command) error {
	switch cmd.Action {
	case ActionAlloc:
		return d.alloc(cmd)
	case ActionFree:
		return d.free(cmd)
	case ActionRead:
		return d.read(cmd)
	case ActionWrite:
		return d.write(cmd)
	case ActionSwitch:
		return d.switchProcess(cmd)
	case ActionShow:
		return d.DumpPageTable(d.out)
	default:
		return fmt.Errorf("driver: unknown action %d", cmd.Action)
	}
}

func (d *Driver) alloc(cmd Command) error {
	pfn, err := d.kernel.AllocPage(cmd.VPN, cmd.Mode)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "alloc: page %d -> frame %d (%s)\n",
		cmd.VPN, pfn, cmd.Mode)

	return nil
}

func (d *Driver) free(cmd Command) error {
	if err := d.kernel.FreePage(cmd.VPN); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "free: page %d\n", cmd.VPN)

	return nil
}

func (d *Driver) read(cmd Command) error {
	pfn, err := d.Access(cmd.VPN, vm.AccessRead)
	if err != nil {
		return err
	}

	data, err := d.kernel.Storage().Read(pfn, 0, 1)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "read: page %d frame %d value %#02x\n",
		cmd.VPN, pfn, data[0])

	return nil
}

func (d *Driver) write(cmd Command) error {
	pfn, err := d.Access(cmd.VPN, vm.AccessReadWrite)
	if err != nil {
		return err
	}

	if cmd.HasData {
		err = d.kernel.Storage().Write(pfn, 0, []byte{cmd.Data})
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(d.out, "write: page %d frame %d\n", cmd.VPN, pfn)

	return nil
}

func (d *Driver) switchProcess(cmd Command) error {
	prev := d.kernel.Current()

	if err := d.kernel.SwitchProcess(cmd.PID); err != nil {
		return err
	}

	fmt.Fprintf(d.out, "switch: pid %d -> pid %d\n", prev, cmd.PID)

	return nil
}

// Access translates a page access, letting the kernel resolve a page
// fault first if the initial translation fails. After a successful fault
// resolution the translation must succeed.
func (d *Driver) Access(vpn vm.VPN, mode vm.AccessMode) (vm.PFN, error) {
	pfn, err := d.kernel.Translate(vpn, mode)
	if err == nil {
		return pfn, nil
	}

	if !errors.Is(err, kernel.ErrPageFault) {
		return 0, err
	}

	if err := d.kernel.HandlePageFault(vpn, mode); err != nil {
		return 0, err
	}

	return d.kernel.Translate(vpn, mode)
}

// DumpPageTable prints the current process's valid mappings and the
// non-zero frame reference counts.
func (d *Driver) DumpPageTable(w io.Writer) error {
	pid := d.kernel.Current()

	fmt.Fprintf(w, "process %d", pid)
	if ready := d.readyPIDs(); len(ready) > 0 {
		fmt.Fprintf(w, " (ready:")
		for _, p := range ready {
			fmt.Fprintf(w, " %d", p)
		}
		fmt.Fprintf(w, ")")
	}
	fmt.Fprintln(w)

	mappings, ok := d.kernel.Mappings(pid)
	if !ok {
		return fmt.Errorf("driver: no page table for pid %d", pid)
	}

	for _, m := range mappings {
		flags := "r-"
		if m.Writable {
			flags = "rw"
		}

		private := ""
		if m.Private {
			private = " private"
		}

		fmt.Fprintf(w, "  page %4d -> frame %4d %s%s\n",
			m.VPN, m.PFN, flags, private)
	}

	for frame, count := range d.kernel.FrameCounts() {
		if count == 0 {
			continue
		}

		fmt.Fprintf(w, "  frame %4d: %d reference(s)\n", frame, count)
	}

	return nil
}

func (d *Driver) readyPIDs() []vm.PID {
	all := d.kernel.Processes()

	var ready []vm.PID
	for _, pid := range all {
		if pid != d.kernel.Current() {
			ready = append(ready, pid)
		}
	}

	return ready
}
