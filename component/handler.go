package component

import (
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim/stats"
)

// Handle adapts any named component into a request.Handle (a weak,
// non-owning spawner reference) for stamping IniRef on a derived request.
func Handle(n interface{ Name() string }) request.Handle {
	return n
}

// Handler is implemented by every concrete pipeline stage (cache, MSHR,
// prefetcher, DRAM controller) and supplies the logic Base's drain loop
// dispatches to: ProcessRequest for a forward-flowing request,
// ProcessReturn for one returning from a later stage. Both return the
// number of cycles the component stays busy servicing the request,
// modelling port/array occupancy; Base advances its local clock by that
// amount after each dispatch.
type Handler interface {
	ProcessRequest(req *request.Request) int
	ProcessReturn(req *request.Request) int
}

// EarliestRequester overrides Base's default "peek the heap root" choice
// of which request to process next. The MSHR implements this to skip
// stalling heads, since the driver's auto-advance loop would otherwise
// deadlock behind a request that cannot make progress until its miss
// returns.
type EarliestRequester interface {
	EarliestRequest() (*request.Request, bool)
}

// Router resolves a request's next or previous pipeline stage, since a
// component's own cmpID only makes sense relative to the specific core
// pipeline (a vector owned by the Memory Simulator driver, spec section
// 4.10) that a given request belongs to; a shared LLC can sit at a
// different index in more than one core's pipeline.
type Router interface {
	ComponentAt(cpuID, cmpID int) Component
	PipelineLength(cpuID int) int
}

// Lifecycle is the set of driver-invoked hooks every component responds
// to (spec section 4.1).
type Lifecycle interface {
	StartSimulation()
	EndWarmUp()
	EndProcWarmUp(cpuID int)
	EndProcSimulation(cpuID int)
	Heartbeat()
	EndSimulation()
}

// Component is the full contract the driver and Router hold components
// by: naming, request ingestion, draining, and lifecycle hooks.
type Component interface {
	Name() string

	AddRequest(req *request.Request)
	SimpleAddRequest(req *request.Request)
	EarliestRequest() (*request.Request, bool)
	AdvanceTo(simNow Cycle)
	StatsRegistry() *stats.Registry

	Lifecycle
}
