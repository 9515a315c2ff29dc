package tracing

import "github.com/sarchlab/vmsim/datarecording"

// TraceTableName is the database table that operation records go to.
const TraceTableName = "vmsim_trace"

// A DBTracer stores operation records through a DataRecorder, so that a run
// can be inspected after it finished.
type DBTracer struct {
	backend datarecording.DataRecorder
}

// NewDBTracer creates a DBTracer that writes to the given recorder. The
// trace table is created immediately.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	backend.CreateTable(TraceTableName, Record{})

	return &DBTracer{backend: backend}
}

// Trace stores one record.
func (t *DBTracer) Trace(r Record) {
	t.backend.InsertData(TraceTableName, r)
}
