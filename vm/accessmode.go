package vm

// AccessMode describes the kind of access that a process performs on a page.
// Bit 0 carries the read permission and bit 1 carries the write permission.
type AccessMode uint32

const (
	// AccessRead is a read-only access.
	AccessRead AccessMode = 0x01

	// AccessWrite is the write permission bit.
	AccessWrite AccessMode = 0x02

	// AccessReadWrite is an access that both reads and writes the page.
	AccessReadWrite AccessMode = AccessRead | AccessWrite
)

// IsWrite returns true if the access mode includes the write permission.
func (m AccessMode) IsWrite() bool {
	return m&AccessWrite != 0
}

// String returns the mode in the conventional "r"/"rw" form.
func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "r"
	case AccessWrite:
		return "w"
	case AccessReadWrite:
		return "rw"
	default:
		return "invalid"
	}
}
