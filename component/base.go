// Package component implements the shared contract every pipeline stage
// (cache, MSHR, prefetcher, DRAM controller) is built on: a per-component
// priority queue of in-flight requests, a local clock, the drain
// algorithm that advances it, and the forward/return routing rules that
// move a request between pipeline stages (spec section 4.1, "Component
// Framework & Event Engine").
package component

import (
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/sim/hook"
	"github.com/sarchlab/cachesim/sim/stats"
)

// Cycle is this package's alias for the simulator's time unit.
type Cycle = sim.Cycle

// Base is the struct every concrete component embeds. It is not itself a
// complete Component: the embedding type must call Init, supplying a
// Handler for ProcessRequest/ProcessReturn dispatch and, optionally, an
// EarliestRequester override.
type Base struct {
	sim.NamedBase
	hook.Base

	router  Router
	handler Handler
	earlier EarliestRequester

	queue      requestHeap
	localCycle Cycle
	processing bool

	Stats   *stats.Registry
	logHook *hook.LogHook
}

// Init wires Base's dependencies. Must be called once before any other
// method, typically from the embedding type's constructor.
func (b *Base) Init(name string, router Router, handler Handler) {
	b.NamedBase = sim.MakeNamedBase(name)
	b.router = router
	b.handler = handler
	b.Stats = stats.NewRegistry()
}

// EnableLogging creates a per-component logfile at
// simFolder/{name}.{logName} (spec section 6) and registers it as a hook,
// so the drain loop's Pos-tagged Invoke calls below start recording. It is
// opt-in per component; a component that never calls it pays no logging
// cost.
func (b *Base) EnableLogging(simFolder, logName string) error {
	h, err := hook.NewLogHook(simFolder, b.Name(), logName)
	if err != nil {
		return err
	}

	b.logHook = h
	b.AcceptHook(h)

	return nil
}

// SetEarliestRequestOverride installs an EarliestRequester that Base's
// drain loop consults instead of its own heap-root peek, used by the
// MSHR to skip stalling heads.
func (b *Base) SetEarliestRequestOverride(e EarliestRequester) {
	b.earlier = e
}

// LocalCycle returns the component's own advancing clock.
func (b *Base) LocalCycle() Cycle {
	return b.localCycle
}

// StatsRegistry exposes the component's counter registry, the seam
// webstats/statsdb read from to report per-component statistics without
// depending on any concrete component type.
func (b *Base) StatsRegistry() *stats.Registry {
	return b.Stats
}

// AddRequest enqueues req and, if the component is not already mid-drain,
// immediately drains everything ready at the component's own current
// local cycle — the same-tick cascade that lets a chain of no-op relays
// complete within a single driver call.
func (b *Base) AddRequest(req *request.Request) {
	b.queue.push(req)
	b.Invoke(hook.Ctx{Domain: b, Pos: hook.PosRequestAdded, Item: req})

	if !b.processing {
		b.drain(b.localCycle)
	}
}

// SimpleAddRequest enqueues req without triggering a drain.
func (b *Base) SimpleAddRequest(req *request.Request) {
	b.queue.push(req)
}

// EarliestRequest is Base's default choice of what to process next: the
// heap root, i.e. lowest (CurrentCycle, Seq). Embedding types that need a
// different choice (the MSHR) implement their own EarliestRequest method,
// which shadows this one in their method set; Base itself consults that
// override via SetEarliestRequestOverride, since Go has no virtual
// dispatch through embedding alone.
func (b *Base) EarliestRequest() (*request.Request, bool) {
	return b.queue.peek()
}

// EarliestRequestCandidates exposes every currently queued request,
// unordered beyond the heap invariant, for an EarliestRequester override
// (the MSHR) that must scan past stalling heads rather than only peek the
// root.
func (b *Base) EarliestRequestCandidates() []*request.Request {
	return b.queue.All()
}

func (b *Base) earliest() (*request.Request, bool) {
	if b.earlier != nil {
		return b.earlier.EarliestRequest()
	}

	return b.EarliestRequest()
}

// AdvanceTo drains every request ready at or before simNow.
func (b *Base) AdvanceTo(simNow Cycle) {
	b.drain(simNow)
}

// drain is the component framework's core loop (spec section 4.1): pop
// the earliest ready request, resolve backward time drift, dispatch to
// ProcessRequest or ProcessReturn, advance the local clock by the
// reported busy cycles, and route the result via sendToNextComponent.
// The processing flag guards against reentrancy: sendToNextComponent can
// call back into this same component's AddRequest (a Clean self-request,
// or a shared component two cores both route through), which must only
// enqueue, never recurse into another drain pass.
func (b *Base) drain(bound Cycle) {
	if b.processing {
		return
	}

	b.processing = true
	defer func() { b.processing = false }()

	for {
		req, ok := b.earliest()
		if !ok || req.CurrentCycle > bound {
			return
		}

		b.queue.remove(req)

		if b.localCycle > req.CurrentCycle {
			req.CurrentCycle = b.localCycle
			b.queue.push(req)
			continue
		}

		if req.CurrentCycle > b.localCycle {
			b.localCycle = req.CurrentCycle
		}

		var busy int
		if req.Serviced {
			busy = b.handler.ProcessReturn(req)
			b.Invoke(hook.Ctx{Domain: b, Pos: hook.PosRequestReturned, Item: req, Detail: busy})
		} else {
			busy = b.handler.ProcessRequest(req)
			b.Invoke(hook.Ctx{Domain: b, Pos: hook.PosRequestServiced, Item: req, Detail: busy})
		}

		b.localCycle += Cycle(busy)
		req.CurrentCycle = b.localCycle

		b.sendToNextComponent(req)
	}
}

// sendToNextComponent implements the direction and termination rules of
// spec section 4.1.
func (b *Base) sendToNextComponent(req *request.Request) {
	switch {
	case req.Destroy:
		b.Invoke(hook.Ctx{Domain: b, Pos: hook.PosRequestDestroy, Item: req})
		return

	case req.Type == request.Clean:
		b.AddRequest(req)
		return

	case req.Stalling:
		return

	case req.Serviced:
		if req.CmpID == 0 {
			req.Finished = true
			return
		}

		req.CmpID--
		prev := b.router.ComponentAt(req.CPUID, req.CmpID)
		prev.AddRequest(req)

	default:
		length := b.router.PipelineLength(req.CPUID)

		if req.CmpID+1 == length {
			req.Serviced = true
			b.AddRequest(req)
			return
		}

		req.CmpID++
		next := b.router.ComponentAt(req.CPUID, req.CmpID)
		next.AddRequest(req)
	}
}

// SendForward injects req into the pipeline one stage past this component,
// exactly as sendToNextComponent's default forward branch does, without
// this component's own ProcessRequest seeing it. Used when a component
// spawns a new forward-flowing request "of its own" — an eviction
// writeback, an injected prefetch — that starts its life at this
// component's position (the caller sets req.CmpID to this component's own
// index first) and must travel onward from here, not be reprocessed here.
func (b *Base) SendForward(req *request.Request) {
	length := b.router.PipelineLength(req.CPUID)

	if req.CmpID+1 == length {
		req.Serviced = true
		b.AddRequest(req)

		return
	}

	req.CmpID++
	next := b.router.ComponentAt(req.CPUID, req.CmpID)
	next.AddRequest(req)
}

// StartSimulation, EndWarmUp, EndProcWarmUp, and EndProcSimulation are
// no-ops by default; embedding types override whichever hooks their logic
// needs (e.g. a running-average prefetcher resetting its counters at
// EndWarmUp). Heartbeat and EndSimulation additionally drive the
// PosHeartbeat hook and close any logfile EnableLogging opened.
func (b *Base) StartSimulation()        {}
func (b *Base) EndWarmUp()              {}
func (b *Base) EndProcWarmUp(_ int)     {}
func (b *Base) EndProcSimulation(_ int) {}

func (b *Base) Heartbeat() {
	b.Invoke(hook.Ctx{Domain: b, Pos: hook.PosHeartbeat, Item: b.localCycle})
}

func (b *Base) EndSimulation() {
	if b.logHook != nil {
		b.logHook.Close()
	}
}
