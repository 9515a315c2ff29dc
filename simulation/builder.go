package simulation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	kernelBuilder  kernel.Builder
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		kernelBuilder: kernel.MakeBuilder(),
		monitorOn:     true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithNumFrames sets the number of physical frames the kernel manages.
func (b Builder) WithNumFrames(n int) Builder {
	b.kernelBuilder = b.kernelBuilder.WithNumFrames(n)
	return b
}

// WithPTEsPerDirectory sets the fan-out of both page-table levels.
func (b Builder) WithPTEsPerDirectory(n int) Builder {
	b.kernelBuilder = b.kernelBuilder.WithPTEsPerDirectory(n)
	return b
}

// WithMaxProcesses sets the number of processes the kernel can hold.
func (b Builder) WithMaxProcesses(n int) Builder {
	b.kernelBuilder = b.kernelBuilder.WithMaxProcesses(n)
	return b
}

// WithPageSize sets the size of a page in bytes.
func (b Builder) WithPageSize(n uint64) Builder {
	b.kernelBuilder = b.kernelBuilder.WithPageSize(n)
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation. The kernel is created, registered, and
// connected to the output database. The monitoring server starts serving
// unless monitoring is disabled.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		compNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "vmsim_" + s.id
	}
	s.dataRecorder = datarecording.New(outputPath)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
	}

	s.kernel = b.kernelBuilder.Build("Kernel")
	s.RegisterComponent(s.kernel)

	s.dbTracer = tracing.NewDBTracer(s.dataRecorder)
	tracing.CollectTraces(s.kernel, s.dbTracer)

	if s.monitor != nil {
		s.monitor.RegisterKernel(s.kernel)
		s.monitor.StartServer()
	}

	return s
}
