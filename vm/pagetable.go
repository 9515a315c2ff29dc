package vm

import "fmt"

// A PTE is a page-table entry. It records whether a virtual page is mapped,
// whether the page may be written, which frame backs the page, and whether
// the entry is a read-only copy-on-write placeholder that must be resolved
// before the page can be written again.
type PTE struct {
	Valid    bool
	Writable bool
	Private  bool
	Frame    PFN
}

// Reset returns the entry to the unmapped state.
func (p *PTE) Reset() {
	*p = PTE{}
}

// A Directory is an inner page-table directory that holds the entries for a
// contiguous range of virtual pages.
type Directory struct {
	ptes []PTE
}

func newDirectory(numEntries int) *Directory {
	return &Directory{ptes: make([]PTE, numEntries)}
}

// NumEntries returns the number of entries in the directory.
func (d *Directory) NumEntries() int {
	return len(d.ptes)
}

// Entry returns the entry at the given index within the directory.
func (d *Directory) Entry(index int) *PTE {
	return &d.ptes[index]
}

// A PageTable is a per-process two-level page table. The outer level holds
// inner directories that are allocated lazily on the first mapping in their
// range. A virtual page number selects the directory with its high bits and
// the entry within the directory with its low bits, so a table with n
// entries per directory addresses n*n virtual pages.
type PageTable struct {
	entriesPerDirectory int
	directories         []*Directory
}

// NewPageTable creates an empty page table with the given number of entries
// per directory.
func NewPageTable(entriesPerDirectory int) *PageTable {
	if entriesPerDirectory <= 0 {
		panic("vm: entries per directory must be positive")
	}

	return &PageTable{
		entriesPerDirectory: entriesPerDirectory,
		directories:         make([]*Directory, entriesPerDirectory),
	}
}

// EntriesPerDirectory returns the number of entries in each directory.
func (t *PageTable) EntriesPerDirectory() int {
	return t.entriesPerDirectory
}

// NumPages returns the number of virtual pages that the table can address.
func (t *PageTable) NumPages() int {
	return t.entriesPerDirectory * t.entriesPerDirectory
}

// Entry returns the entry for the given virtual page. The second return
// value is false if the inner directory does not exist, in which case the
// page cannot be mapped.
func (t *PageTable) Entry(vpn VPN) (*PTE, bool) {
	dirIndex, entryIndex := t.split(vpn)

	dir := t.directories[dirIndex]
	if dir == nil {
		return nil, false
	}

	return dir.Entry(entryIndex), true
}

// EntryForAlloc returns the entry for the given virtual page, creating the
// inner directory if it does not exist yet.
func (t *PageTable) EntryForAlloc(vpn VPN) *PTE {
	dirIndex, entryIndex := t.split(vpn)

	dir := t.directories[dirIndex]
	if dir == nil {
		dir = newDirectory(t.entriesPerDirectory)
		t.directories[dirIndex] = dir
	}

	return dir.Entry(entryIndex)
}

// VisitValid calls visit for every valid entry, in increasing virtual-page
// order.
func (t *PageTable) VisitValid(visit func(vpn VPN, pte *PTE)) {
	for dirIndex, dir := range t.directories {
		if dir == nil {
			continue
		}

		for entryIndex := 0; entryIndex < dir.NumEntries(); entryIndex++ {
			pte := dir.Entry(entryIndex)
			if !pte.Valid {
				continue
			}

			visit(VPN(dirIndex*t.entriesPerDirectory+entryIndex), pte)
		}
	}
}

func (t *PageTable) split(vpn VPN) (dirIndex, entryIndex int) {
	t.vpnMustBeInRange(vpn)

	dirIndex = int(vpn) / t.entriesPerDirectory
	entryIndex = int(vpn) % t.entriesPerDirectory

	return dirIndex, entryIndex
}

func (t *PageTable) vpnMustBeInRange(vpn VPN) {
	if int(vpn) >= t.NumPages() {
		panic(fmt.Sprintf("vm: vpn %d out of range, table addresses %d pages",
			vpn, t.NumPages()))
	}
}
