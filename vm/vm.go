// Package vm defines the data structures that describe virtual memory,
// including access modes, page-table entries, and per-process two-level page
// tables.
package vm

// PID is the ID of a process.
type PID uint32

// VPN is a virtual page number.
type VPN uint64

// PFN is a physical page-frame number.
type PFN uint64
