// Package tracing provides tools that record the operations a kernel
// component performs.
package tracing

// A Record describes one completed kernel operation.
type Record struct {
	Seq        uint64 `json:"seq"`
	Kind       string `json:"kind"`
	PID        uint32 `json:"pid"`
	PrevPID    uint32 `json:"prev_pid"`
	VPN        uint64 `json:"vpn"`
	PFN        uint64 `json:"pfn"`
	OldPFN     uint64 `json:"old_pfn"`
	Mode       string `json:"mode"`
	Resolution string `json:"resolution"`
}

// A Tracer can collect operation records.
type Tracer interface {
	Trace(r Record)
}
