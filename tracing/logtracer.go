package tracing

import (
	"fmt"
	"log"
)

// A LogTracer writes one line per operation to a logger.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a LogTracer that writes to the given logger.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Trace writes one record.
func (t *LogTracer) Trace(r Record) {
	t.logger.Print(FormatRecord(r))
}

// FormatRecord renders a record as a one-line human-readable string.
func FormatRecord(r Record) string {
	switch r.Kind {
	case "alloc":
		return fmt.Sprintf("%d alloc pid %d: page %d -> frame %d (%s)",
			r.Seq, r.PID, r.VPN, r.PFN, r.Mode)
	case "free":
		return fmt.Sprintf("%d free pid %d: page %d -> frame %d",
			r.Seq, r.PID, r.VPN, r.PFN)
	case "fault":
		if r.Resolution == "copied" {
			return fmt.Sprintf(
				"%d fault pid %d: page %d copied, frame %d -> frame %d",
				r.Seq, r.PID, r.VPN, r.OldPFN, r.PFN)
		}

		return fmt.Sprintf("%d fault pid %d: page %d promoted at frame %d",
			r.Seq, r.PID, r.VPN, r.PFN)
	case "switch", "fork":
		return fmt.Sprintf("%d %s: pid %d -> pid %d",
			r.Seq, r.Kind, r.PrevPID, r.PID)
	default:
		return fmt.Sprintf("%d %s", r.Seq, r.Kind)
	}
}
