package kernel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("Comp", func() {
	var k *kernel.Comp

	BeforeEach(func() {
		k = kernel.MakeBuilder().
			WithNumFrames(8).
			WithMaxProcesses(3).
			WithPageSize(64).
			Build("Kernel")
	})

	Describe("SwitchProcess", func() {
		Context("when the target does not exist", func() {
			It("should fork a child that mirrors the parent", func() {
				k.AllocPage(0, vm.AccessReadWrite)
				k.AllocPage(1, vm.AccessRead)
				k.AllocPage(40, vm.AccessReadWrite)

				Expect(k.SwitchProcess(99)).To(Succeed())

				Expect(k.Current()).To(Equal(vm.PID(99)))
				Expect(k.Processes()).To(Equal([]vm.PID{99, 0}))

				childMappings, _ := k.Mappings(99)
				parentMappings, _ := k.Mappings(0)
				Expect(childMappings).To(Equal(parentMappings))
			})

			It("should demote writable mappings in both processes", func() {
				k.AllocPage(0, vm.AccessReadWrite)
				k.AllocPage(1, vm.AccessRead)

				Expect(k.SwitchProcess(99)).To(Succeed())

				want := []kernel.Mapping{
					{VPN: 0, PFN: 0, Writable: false, Private: true},
					{VPN: 1, PFN: 1, Writable: false, Private: false},
				}

				childMappings, _ := k.Mappings(99)
				parentMappings, _ := k.Mappings(0)
				Expect(childMappings).To(Equal(want))
				Expect(parentMappings).To(Equal(want))
			})

			It("should increment each mapped frame's count exactly once", func() {
				k.AllocPage(0, vm.AccessReadWrite)
				k.AllocPage(1, vm.AccessRead)

				Expect(k.SwitchProcess(99)).To(Succeed())

				Expect(k.FrameCounts()).To(Equal(
					[]uint32{2, 2, 0, 0, 0, 0, 0, 0}))
				Expect(k.VerifyRefCounts()).To(Succeed())
			})

			It("should fork an empty process from an empty parent", func() {
				Expect(k.SwitchProcess(5)).To(Succeed())

				mappings, found := k.Mappings(5)
				Expect(found).To(BeTrue())
				Expect(mappings).To(BeEmpty())
				Expect(k.VerifyRefCounts()).To(Succeed())
			})

			It("should enforce the process limit", func() {
				Expect(k.SwitchProcess(1)).To(Succeed())
				Expect(k.SwitchProcess(2)).To(Succeed())

				err := k.SwitchProcess(3)

				Expect(err).To(MatchError(kernel.ErrTooManyProcesses))
				Expect(k.Current()).To(Equal(vm.PID(2)))
				Expect(k.NumProcesses()).To(Equal(3))
			})
		})

		Context("when the target is in the ready set", func() {
			BeforeEach(func() {
				k.AllocPage(0, vm.AccessReadWrite)
				Expect(k.SwitchProcess(7)).To(Succeed())
			})

			It("should trade places with the running process", func() {
				Expect(k.SwitchProcess(0)).To(Succeed())

				Expect(k.Current()).To(Equal(vm.PID(0)))
				Expect(k.Processes()).To(Equal([]vm.PID{0, 7}))
			})

			It("should restore the same page table after a round trip", func() {
				before, _ := k.Mappings(7)
				counts := k.FrameCounts()

				Expect(k.SwitchProcess(0)).To(Succeed())
				Expect(k.SwitchProcess(7)).To(Succeed())

				after, _ := k.Mappings(7)
				Expect(after).To(Equal(before))
				Expect(k.FrameCounts()).To(Equal(counts))
				Expect(k.Current()).To(Equal(vm.PID(7)))
			})

			It("should not fork on repeated switches", func() {
				Expect(k.SwitchProcess(0)).To(Succeed())
				Expect(k.SwitchProcess(7)).To(Succeed())
				Expect(k.SwitchProcess(0)).To(Succeed())

				Expect(k.NumProcesses()).To(Equal(2))
			})
		})

		It("should treat switching to the running process as a no-op", func() {
			k.AllocPage(0, vm.AccessReadWrite)

			Expect(k.SwitchProcess(0)).To(Succeed())

			Expect(k.Current()).To(Equal(vm.PID(0)))
			Expect(k.NumProcesses()).To(Equal(1))

			mappings, _ := k.Mappings(0)
			Expect(mappings).To(Equal([]kernel.Mapping{
				{VPN: 0, PFN: 0, Writable: true, Private: false},
			}))
		})

		It("should isolate the address spaces after a fork", func() {
			k.AllocPage(0, vm.AccessReadWrite)
			Expect(k.SwitchProcess(1)).To(Succeed())

			k.AllocPage(1, vm.AccessReadWrite)

			parentMappings, _ := k.Mappings(0)
			Expect(parentMappings).To(HaveLen(1))

			childMappings, _ := k.Mappings(1)
			Expect(childMappings).To(HaveLen(2))
			Expect(k.VerifyRefCounts()).To(Succeed())
		})
	})
})
