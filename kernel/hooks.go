package kernel

import (
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/vm"
)

// HookPosPageAlloc marks the completion of a page allocation.
var HookPosPageAlloc = &hooking.HookPos{Name: "PageAlloc"}

// HookPosPageFree marks the completion of a page free.
var HookPosPageFree = &hooking.HookPos{Name: "PageFree"}

// HookPosPageFault marks the resolution of a page fault.
var HookPosPageFault = &hooking.HookPos{Name: "PageFault"}

// HookPosProcessSwitch marks a switch to a process in the ready set.
var HookPosProcessSwitch = &hooking.HookPos{Name: "ProcessSwitch"}

// HookPosProcessFork marks a switch that forked a new process.
var HookPosProcessFork = &hooking.HookPos{Name: "ProcessFork"}

// OpKind enumerates the operations that a kernel component performs.
type OpKind int

// Operation kinds, one per exported kernel operation that mutates state.
const (
	OpAlloc OpKind = iota
	OpFree
	OpFault
	OpSwitch
	OpFork
)

// String returns the name of the operation kind.
func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	case OpFault:
		return "fault"
	case OpSwitch:
		return "switch"
	case OpFork:
		return "fork"
	default:
		return "unknown"
	}
}

// FaultResolution tells how a page fault was resolved.
type FaultResolution int

const (
	// ResolutionNone means the operation was not a fault.
	ResolutionNone FaultResolution = iota

	// ResolutionPromoted means the faulting entry was the only mapping of
	// its frame and was made writable in place.
	ResolutionPromoted

	// ResolutionCopied means the frame was shared and its content was
	// duplicated into a fresh frame.
	ResolutionCopied
)

// String returns the name of the resolution.
func (r FaultResolution) String() string {
	switch r {
	case ResolutionPromoted:
		return "promoted"
	case ResolutionCopied:
		return "copied"
	default:
		return ""
	}
}

// OpInfo describes one completed kernel operation. It is delivered to hooks
// as the item of the hook context.
type OpInfo struct {
	Kind OpKind

	// PID is the process the operation ran in. After a switch or a fork, it
	// is the incoming process.
	PID vm.PID

	// PrevPID is the outgoing process of a switch or a fork.
	PrevPID vm.PID

	VPN  vm.VPN
	PFN  vm.PFN
	Mode vm.AccessMode

	// OldPFN is the frame a copied fault moved away from.
	OldPFN vm.PFN

	Resolution FaultResolution
}
