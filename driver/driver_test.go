package driver_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/driver"
	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("Driver", func() {
	var (
		k   *kernel.Comp
		out *bytes.Buffer
		d   *driver.Driver
	)

	BeforeEach(func() {
		k = kernel.MakeBuilder().
			WithNumFrames(4).
			WithMaxProcesses(3).
			Build("Kernel")
		out = &bytes.Buffer{}
		d = driver.NewDriver(k).WithOutput(out)
	})

	run := func(script string) error {
		return d.Run(strings.NewReader(script))
	}

	It("should run an allocation script", func() {
		Expect(run("alloc 0 rw\nalloc 1 ro\n")).To(Succeed())

		Expect(out.String()).To(
			ContainSubstring("alloc: page 0 -> frame 0 (rw)"))
		Expect(out.String()).To(
			ContainSubstring("alloc: page 1 -> frame 1 (r)"))
	})

	It("should stop on a malformed line", func() {
		err := run("alloc 0 rw\nbogus\n")

		Expect(err).To(MatchError(ContainSubstring("line 2")))
	})

	It("should keep running after a failing line", func() {
		Expect(run("free 3\nalloc 0 rw\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("line 1:"))
		Expect(out.String()).To(
			ContainSubstring("alloc: page 0 -> frame 0"))
	})

	It("should store and read back a byte", func() {
		Expect(run("alloc 0 rw\nwrite 0 0x2a\nread 0\n")).To(Succeed())

		Expect(out.String()).To(
			ContainSubstring("read: page 0 frame 0 value 0x2a"))
	})

	It("should report a read of an unmapped page and continue", func() {
		Expect(run("read 5\nalloc 0 ro\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("line 1:"))
		Expect(out.String()).To(ContainSubstring("alloc: page 0"))
	})

	It("should fork when switching to an unknown pid", func() {
		Expect(run("alloc 0 rw\nswitch 7\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("switch: pid 0 -> pid 7"))
		Expect(k.Current()).To(Equal(vm.PID(7)))
		Expect(k.NumProcesses()).To(Equal(2))
	})

	It("should not fork when switching to the running pid", func() {
		Expect(run("switch 0\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("switch: pid 0 -> pid 0"))
		Expect(k.NumProcesses()).To(Equal(1))
	})

	It("should copy a shared page when a write faults", func() {
		script := "alloc 0 rw\nwrite 0 0xaa\nswitch 7\nwrite 0 0x55\n"

		Expect(run(script)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("write: page 0 frame 1"))

		counts := k.FrameCounts()
		Expect(counts[0]).To(Equal(uint32(1)))
		Expect(counts[1]).To(Equal(uint32(1)))
	})

	Describe("Access", func() {
		It("should translate a mapped page without faulting", func() {
			Expect(run("alloc 0 rw\n")).To(Succeed())

			pfn, err := d.Access(0, vm.AccessRead)

			Expect(err).ToNot(HaveOccurred())
			Expect(pfn).To(Equal(vm.PFN(0)))
		})

		It("should resolve a write fault and return the new frame", func() {
			Expect(run("alloc 0 rw\nswitch 9\n")).To(Succeed())

			pfn, err := d.Access(0, vm.AccessReadWrite)

			Expect(err).ToNot(HaveOccurred())
			Expect(pfn).To(Equal(vm.PFN(1)))
		})

		It("should report an unresolvable fault", func() {
			_, err := d.Access(3, vm.AccessReadWrite)

			Expect(err).To(MatchError(kernel.ErrUnresolvableFault))
		})

		It("should report frame exhaustion during a copy", func() {
			small := kernel.MakeBuilder().
				WithNumFrames(1).
				WithMaxProcesses(3).
				Build("SmallKernel")
			sd := driver.NewDriver(small)

			_, err := small.AllocPage(0, vm.AccessReadWrite)
			Expect(err).ToNot(HaveOccurred())
			Expect(small.SwitchProcess(5)).To(Succeed())

			_, err = sd.Access(0, vm.AccessReadWrite)

			Expect(err).To(MatchError(mem.ErrOutOfFrames))
		})
	})

	Context("in check mode", func() {
		BeforeEach(func() {
			d = driver.NewDriver(k).WithOutput(out).WithCheck()
		})

		It("should run a fork-heavy script cleanly", func() {
			script := `alloc 0 rw
alloc 1 ro
switch 4
write 0 0x11
free 1
switch 0
show
`
			Expect(run(script)).To(Succeed())
			Expect(k.VerifyRefCounts()).To(Succeed())
		})
	})

	Describe("DumpPageTable", func() {
		It("should print the mappings and reference counts", func() {
			Expect(run("alloc 0 rw\nalloc 3 ro\n")).To(Succeed())

			dump := &bytes.Buffer{}
			Expect(d.DumpPageTable(dump)).To(Succeed())

			Expect(dump.String()).To(ContainSubstring("process 0"))
			Expect(dump.String()).To(
				ContainSubstring("page    0 -> frame    0 rw"))
			Expect(dump.String()).To(
				ContainSubstring("page    3 -> frame    1 r-"))
			Expect(dump.String()).To(
				ContainSubstring("frame    0: 1 reference(s)"))
		})

		It("should mark private mappings after a fork", func() {
			Expect(run("alloc 0 rw\nswitch 2\n")).To(Succeed())

			dump := &bytes.Buffer{}
			Expect(d.DumpPageTable(dump)).To(Succeed())

			Expect(dump.String()).To(ContainSubstring("process 2"))
			Expect(dump.String()).To(ContainSubstring("(ready: 0)"))
			Expect(dump.String()).To(
				ContainSubstring("page    0 -> frame    0 r- private"))
			Expect(dump.String()).To(
				ContainSubstring("frame    0: 2 reference(s)"))
		})

		It("should be reachable through the show command", func() {
			Expect(run("alloc 0 rw\nshow\n")).To(Succeed())

			Expect(out.String()).To(ContainSubstring("process 0"))
		})
	})
})
