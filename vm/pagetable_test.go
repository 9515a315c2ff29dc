package vm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("PageTable", func() {
	var pt *vm.PageTable

	BeforeEach(func() {
		pt = vm.NewPageTable(16)
	})

	It("should address entries-per-directory squared pages", func() {
		Expect(pt.EntriesPerDirectory()).To(Equal(16))
		Expect(pt.NumPages()).To(Equal(256))
	})

	It("should not have directories before the first allocation", func() {
		pte, ok := pt.Entry(0)

		Expect(ok).To(BeFalse())
		Expect(pte).To(BeNil())
	})

	It("should create a directory on the first allocation in its range", func() {
		pte := pt.EntryForAlloc(18)
		pte.Valid = true
		pte.Frame = 3

		got, ok := pt.Entry(18)
		Expect(ok).To(BeTrue())
		Expect(got.Valid).To(BeTrue())
		Expect(got.Frame).To(Equal(vm.PFN(3)))

		neighbor, ok := pt.Entry(19)
		Expect(ok).To(BeTrue())
		Expect(neighbor.Valid).To(BeFalse())
	})

	It("should not create directories in unrelated ranges", func() {
		pt.EntryForAlloc(18)

		_, ok := pt.Entry(250)
		Expect(ok).To(BeFalse())
	})

	It("should keep pages in different directories separate", func() {
		low := pt.EntryForAlloc(5)
		high := pt.EntryForAlloc(5 + 16)
		low.Valid = true
		low.Frame = 1
		high.Valid = true
		high.Frame = 2

		gotLow, _ := pt.Entry(5)
		gotHigh, _ := pt.Entry(21)
		Expect(gotLow.Frame).To(Equal(vm.PFN(1)))
		Expect(gotHigh.Frame).To(Equal(vm.PFN(2)))
	})

	It("should return the same entry on repeated lookups", func() {
		first := pt.EntryForAlloc(100)
		first.Valid = true

		second := pt.EntryForAlloc(100)
		Expect(second).To(BeIdenticalTo(first))
	})

	It("should panic on an out-of-range vpn", func() {
		Expect(func() { pt.EntryForAlloc(256) }).To(Panic())
		Expect(func() { pt.Entry(1000) }).To(Panic())
	})

	Describe("VisitValid", func() {
		It("should visit valid entries in increasing vpn order", func() {
			for _, vpn := range []vm.VPN{200, 3, 90} {
				pte := pt.EntryForAlloc(vpn)
				pte.Valid = true
				pte.Frame = vm.PFN(vpn)
			}
			pt.EntryForAlloc(50) // stays invalid

			var visited []vm.VPN
			pt.VisitValid(func(vpn vm.VPN, pte *vm.PTE) {
				visited = append(visited, vpn)
				Expect(pte.Frame).To(Equal(vm.PFN(vpn)))
			})

			Expect(visited).To(Equal([]vm.VPN{3, 90, 200}))
		})

		It("should visit nothing on an empty table", func() {
			count := 0
			pt.VisitValid(func(vm.VPN, *vm.PTE) { count++ })

			Expect(count).To(Equal(0))
		})
	})
})

var _ = Describe("PTE", func() {
	It("should reset to the unmapped state", func() {
		pte := vm.PTE{Valid: true, Writable: true, Private: true, Frame: 7}

		pte.Reset()

		Expect(pte).To(Equal(vm.PTE{}))
	})
})
