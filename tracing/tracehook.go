package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/kernel"
)

// CollectTraces registers a hook on the domain that converts every completed
// operation into a Record and forwards it to the tracer. Registering the
// same tracer twice on one domain panics.
func CollectTraces(domain hooking.NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		h, ok := hook.(*traceHook)
		if ok && h.tracer == tracer {
			panic(fmt.Sprintf("domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{tracer: tracer})
}

// A traceHook converts kernel operations into records. The sequence number
// counts the operations seen through this hook.
type traceHook struct {
	tracer Tracer
	seq    uint64
}

func (h *traceHook) Func(ctx hooking.HookCtx) {
	info, ok := ctx.Item.(kernel.OpInfo)
	if !ok {
		return
	}

	h.tracer.Trace(h.record(info))
}

func (h *traceHook) record(info kernel.OpInfo) Record {
	r := Record{
		Seq:        h.seq,
		Kind:       info.Kind.String(),
		PID:        uint32(info.PID),
		PrevPID:    uint32(info.PrevPID),
		VPN:        uint64(info.VPN),
		PFN:        uint64(info.PFN),
		OldPFN:     uint64(info.OldPFN),
		Resolution: info.Resolution.String(),
	}

	if info.Mode != 0 {
		r.Mode = info.Mode.String()
	}

	h.seq++

	return r
}
