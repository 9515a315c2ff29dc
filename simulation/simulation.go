// Package simulation assembles the services that a simulation needs and
// keeps track of the components that participate in it.
package simulation

import (
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/kernel"
	"github.com/sarchlab/vmsim/monitoring"
	"github.com/sarchlab/vmsim/tracing"
)

// A Simulation provides the services required to define a simulation.
type Simulation struct {
	id string

	kernel       *kernel.Comp
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	dbTracer     *tracing.DBTracer

	components    []hooking.Named
	compNameIndex map[string]int
}

// ID returns the unique ID of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// GetKernel returns the kernel that the simulation drives.
func (s *Simulation) GetKernel() *kernel.Comp {
	return s.kernel
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetDBTracer returns the tracer that records kernel operations in the
// output database.
func (s *Simulation) GetDBTracer() *tracing.DBTracer {
	return s.dbTracer
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c hooking.Named) {
	compName := c.Name()
	if _, ok := s.compNameIndex[compName]; ok {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}
}

// GetComponentByName returns the component with the given name, or nil if
// no such component is registered.
func (s *Simulation) GetComponentByName(name string) hooking.Named {
	index, ok := s.compNameIndex[name]
	if !ok {
		return nil
	}

	return s.components[index]
}

// Components returns all the registered components.
func (s *Simulation) Components() []hooking.Named {
	return s.components
}

// Terminate terminates the simulation. The output database is flushed and
// closed.
func (s *Simulation) Terminate() {
	s.dataRecorder.Close()
}
