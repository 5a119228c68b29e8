// Package simulator implements the Memory Simulator driver (spec section
// 4.10): the component registry, per-core pipeline composition, global
// cycle advance, and IPC/log output every external driver (the OoO trace
// driver, a synthetic-trace harness, a test) issues requests through.
package simulator

import (
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim"
)

// Cycle is this package's alias for the simulator's global time unit.
type Cycle = sim.Cycle

// Simulator owns every registered component and the per-core pipelines
// built from them. It implements component.Router directly, since a
// pipeline is nothing more than "which component sits at index i for
// core c", the exact question Router answers.
type Simulator struct {
	components map[string]component.Component
	pipelines  [][]component.Component // indexed by cpuID

	cycle Cycle
	log   *Log
}

// New creates a Simulator with numCPUs empty per-core pipelines.
func New(numCPUs int) *Simulator {
	return &Simulator{
		components: make(map[string]component.Component),
		pipelines:  make([][]component.Component, numCPUs),
		log:        NewLog(),
	}
}

// Register adds c to the component registry under its own Name(). It
// panics on a duplicate name, a configuration error per spec section 7
// ("unknown component type" and its siblings are the parser's job; a
// colliding name is this layer's own invariant).
func (s *Simulator) Register(c component.Component) {
	if _, ok := s.components[c.Name()]; ok {
		panic(fmt.Sprintf("simulator: component %q already registered", c.Name()))
	}

	s.components[c.Name()] = c
}

// Component looks up a registered component by name.
func (s *Simulator) Component(name string) (component.Component, bool) {
	c, ok := s.components[name]
	return c, ok
}

// AppendToPipeline appends component name to cpuID's pipeline, in
// definition-file order (spec section 6, "component TYPE NAME" / "<cpuID>
// N1 N2 ..." / "all N1 N2 ...").
func (s *Simulator) AppendToPipeline(cpuID int, name string) {
	c, ok := s.components[name]
	if !ok {
		panic(fmt.Sprintf("simulator: pipeline references unknown component %q", name))
	}

	s.pipelines[cpuID] = append(s.pipelines[cpuID], c)
}

// ComponentAt implements component.Router.
func (s *Simulator) ComponentAt(cpuID, cmpID int) component.Component {
	return s.pipelines[cpuID][cmpID]
}

// PipelineLength implements component.Router.
func (s *Simulator) PipelineLength(cpuID int) int {
	return len(s.pipelines[cpuID])
}

// Cycle returns the simulator's current global cycle, the high-water
// mark of every AdvanceTo/AutoAdvance call so far.
func (s *Simulator) Cycle() Cycle {
	return s.cycle
}

// IssueRequest is the driver-facing entry point (spec section 6,
// "Driver -> simulator protocol", and section 4.10's processMemoryRequest):
// it stamps cmpID=0 and injects req at the head of its core's pipeline.
func (s *Simulator) IssueRequest(req *request.Request) {
	req.CmpID = 0

	length := s.PipelineLength(req.CPUID)
	if length == 0 {
		panic(fmt.Sprintf("simulator: cpu %d has an empty pipeline", req.CPUID))
	}

	s.ComponentAt(req.CPUID, 0).AddRequest(req)
}

// AdvanceTo drains every registered component up to simNow, and raises
// the simulator's own global cycle to at least simNow.
func (s *Simulator) AdvanceTo(simNow Cycle) {
	for _, c := range s.components {
		c.AdvanceTo(simNow)
	}

	if simNow > s.cycle {
		s.cycle = simNow
	}
}

// AutoAdvance advances to the minimum earliestRequest().currentCycle
// across every registered component (spec section 4.10), the cooperative
// event-driven step a caller takes when it has no work of its own ready
// before then. It returns false if no component has anything pending,
// meaning the simulation has nothing left to do.
func (s *Simulator) AutoAdvance() bool {
	next, ok := s.nextReadyCycle()
	if !ok {
		return false
	}

	s.AdvanceTo(next)

	return true
}

func (s *Simulator) nextReadyCycle() (Cycle, bool) {
	best := Cycle(0)
	found := false

	for _, c := range s.components {
		req, ok := c.EarliestRequest()
		if !ok {
			continue
		}

		if !found || req.CurrentCycle < best {
			best = req.CurrentCycle
			found = true
		}
	}

	return best, found
}

// StartSimulation, EndWarmUp, EndProcSimulation, Heartbeat, and
// EndSimulation broadcast the corresponding lifecycle hook (spec section
// 4.1) to every registered component. The components are held in a map,
// so the order in which they receive a broadcast is not defined.
func (s *Simulator) StartSimulation() {
	for _, c := range s.components {
		c.StartSimulation()
	}
}

func (s *Simulator) EndWarmUp() {
	for _, c := range s.components {
		c.EndWarmUp()
	}
}

func (s *Simulator) EndProcWarmUp(cpuID int) {
	for _, c := range s.components {
		c.EndProcWarmUp(cpuID)
	}
}

func (s *Simulator) EndProcSimulation(cpuID int) {
	for _, c := range s.components {
		c.EndProcSimulation(cpuID)
	}
}

func (s *Simulator) Heartbeat() {
	for _, c := range s.components {
		c.Heartbeat()
	}

	s.log.Heartbeat(s.cycle)
}

func (s *Simulator) EndSimulation() {
	for _, c := range s.components {
		c.EndSimulation()
	}
}

// Log returns the simulator's aggregate event log.
func (s *Simulator) Log() *Log {
	return s.log
}

// DumpIPC writes the per-core IPC record format spec section 6 requires
// ("cpuID finishIcount-checkpointIcount finishCycle-checkpointCycle") to w.
func (s *Simulator) DumpIPC(w io.Writer, records []IPCRecord) error {
	for _, r := range records {
		_, err := fmt.Fprintf(w, "%d %d %d\n", r.CPUID, r.FinishICount-r.CheckpointICount, r.FinishCycle-r.CheckpointCycle)
		if err != nil {
			return err
		}
	}

	return nil
}

// IPCRecord is one core's checkpoint-to-finish IPC sample (spec section 6).
type IPCRecord struct {
	CPUID           int
	CheckpointICount uint64
	FinishICount     uint64
	CheckpointCycle  Cycle
	FinishCycle      Cycle
}
