package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("CollectTraces", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		k        *kernel.Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)

		k = kernel.MakeBuilder().
			WithNumFrames(4).
			WithMaxProcesses(4).
			WithPageSize(64).
			Build("Kernel")
		CollectTraces(k, tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record an allocation", func() {
		tracer.EXPECT().Trace(Record{
			Seq:  0,
			Kind: "alloc",
			PID:  0,
			VPN:  5,
			PFN:  0,
			Mode: "rw",
		})

		k.AllocPage(5, vm.AccessReadWrite)
	})

	It("should number records sequentially", func() {
		gomock.InOrder(
			tracer.EXPECT().Trace(Record{
				Seq: 0, Kind: "alloc", VPN: 1, PFN: 0, Mode: "r",
			}),
			tracer.EXPECT().Trace(Record{
				Seq: 1, Kind: "free", VPN: 1, PFN: 0,
			}),
		)

		k.AllocPage(1, vm.AccessRead)
		k.FreePage(1)
	})

	It("should record a fork and a copied fault", func() {
		gomock.InOrder(
			tracer.EXPECT().Trace(Record{
				Seq: 0, Kind: "alloc", VPN: 0, PFN: 0, Mode: "rw",
			}),
			tracer.EXPECT().Trace(Record{
				Seq: 1, Kind: "fork", PID: 9, PrevPID: 0,
			}),
			tracer.EXPECT().Trace(Record{
				Seq: 2, Kind: "fault", PID: 9, VPN: 0, PFN: 1, OldPFN: 0,
				Mode: "rw", Resolution: "copied",
			}),
		)

		k.AllocPage(0, vm.AccessReadWrite)
		k.SwitchProcess(9)
		k.HandlePageFault(0, vm.AccessReadWrite)
	})

	It("should not record failed operations", func() {
		k.FreePage(3)
	})

	It("should panic when the same tracer is registered twice", func() {
		Expect(func() { CollectTraces(k, tracer) }).To(Panic())
	})

	It("should allow different tracers on one domain", func() {
		other := NewMockTracer(mockCtrl)

		Expect(func() { CollectTraces(k, other) }).ToNot(Panic())
		Expect(k.NumHooks()).To(Equal(2))

		tracer.EXPECT().Trace(gomock.Any())
		other.EXPECT().Trace(gomock.Any())

		k.AllocPage(0, vm.AccessRead)
	})
})

var _ = Describe("traceHook", func() {
	It("should ignore items that are not operations", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		defer mockCtrl.Finish()

		tracer := NewMockTracer(mockCtrl)
		hook := &traceHook{tracer: tracer}

		hook.Func(hooking.HookCtx{Item: "something else"})
	})
})
