package kernel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/vm"
)

type opCollector struct {
	ctxs []hooking.HookCtx
}

func (c *opCollector) Func(ctx hooking.HookCtx) {
	c.ctxs = append(c.ctxs, ctx)
}

var _ = Describe("Comp", func() {
	var (
		k         *kernel.Comp
		collector *opCollector
	)

	BeforeEach(func() {
		k = kernel.MakeBuilder().
			WithNumFrames(4).
			WithMaxProcesses(4).
			WithPageSize(64).
			Build("Kernel")
		collector = &opCollector{}
		k.AcceptHook(collector)
	})

	It("should report completed operations to hooks", func() {
		k.AllocPage(0, vm.AccessReadWrite)
		k.SwitchProcess(1)
		k.HandlePageFault(0, vm.AccessReadWrite)
		k.FreePage(0)
		k.SwitchProcess(0)

		Expect(collector.ctxs).To(HaveLen(5))

		positions := []*hooking.HookPos{}
		for _, ctx := range collector.ctxs {
			Expect(ctx.Domain).To(BeIdenticalTo(k))
			positions = append(positions, ctx.Pos)
		}
		Expect(positions).To(Equal([]*hooking.HookPos{
			kernel.HookPosPageAlloc,
			kernel.HookPosProcessFork,
			kernel.HookPosPageFault,
			kernel.HookPosPageFree,
			kernel.HookPosProcessSwitch,
		}))
	})

	It("should describe an allocation", func() {
		k.AllocPage(3, vm.AccessReadWrite)

		info := collector.ctxs[0].Item.(kernel.OpInfo)
		Expect(info).To(Equal(kernel.OpInfo{
			Kind: kernel.OpAlloc,
			PID:  0,
			VPN:  3,
			PFN:  0,
			Mode: vm.AccessReadWrite,
		}))
	})

	It("should describe a fork with both pids", func() {
		k.SwitchProcess(8)

		info := collector.ctxs[0].Item.(kernel.OpInfo)
		Expect(info.Kind).To(Equal(kernel.OpFork))
		Expect(info.PID).To(Equal(vm.PID(8)))
		Expect(info.PrevPID).To(Equal(vm.PID(0)))
	})

	It("should describe a copied fault with both frames", func() {
		k.AllocPage(0, vm.AccessReadWrite)
		k.SwitchProcess(1)
		k.HandlePageFault(0, vm.AccessReadWrite)

		info := collector.ctxs[2].Item.(kernel.OpInfo)
		Expect(info.Kind).To(Equal(kernel.OpFault))
		Expect(info.Resolution).To(Equal(kernel.ResolutionCopied))
		Expect(info.PFN).To(Equal(vm.PFN(1)))
		Expect(info.OldPFN).To(Equal(vm.PFN(0)))
	})

	It("should describe a promoted fault", func() {
		k.AllocPage(0, vm.AccessReadWrite)
		k.SwitchProcess(1)
		k.FreePage(0)
		k.SwitchProcess(0)
		k.HandlePageFault(0, vm.AccessReadWrite)

		last := collector.ctxs[len(collector.ctxs)-1]
		info := last.Item.(kernel.OpInfo)
		Expect(info.Kind).To(Equal(kernel.OpFault))
		Expect(info.Resolution).To(Equal(kernel.ResolutionPromoted))
		Expect(info.PFN).To(Equal(vm.PFN(0)))
	})

	It("should not report failed operations", func() {
		k.FreePage(0)
		k.HandlePageFault(9, vm.AccessReadWrite)

		Expect(collector.ctxs).To(BeEmpty())
	})
})
