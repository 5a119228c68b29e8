// Package ooo implements the out-of-order trace driver (spec section 1's
// "external scheduler that submits references and awaits completion"): a
// bounded in-flight window per core, age-ordered issue, and retirement
// tracking against the Memory Simulator's finished flag.
package ooo

import (
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/simulator"
	"github.com/sarchlab/cachesim/trace"
)

// inFlight tracks one issued-but-not-yet-finished request's age (issue
// order), the age semantics ooo.go's window uses to prevent an unbounded
// core from running arbitrarily far ahead of a stalled one.
type inFlight struct {
	req *request.Request
	age uint64
}

// Core drives one CPU's trace source through a bounded window of
// in-flight requests, submitting new references in trace order as window
// slots free up and retiring every finished one whatever its age. The
// bounded window mirrors _examples/Maemo32-SupraX_Legacy/proto/ooo/ooo.go's
// instruction window, applied to memory references instead of ALU ops.
type Core struct {
	cpuID  int
	sim    *simulator.Simulator
	src    trace.Source
	window int

	inFlight []*inFlight
	nextAge  uint64

	exhausted bool
	retired   uint64
}

// NewCore builds a driver for cpuID pulling references from src, holding
// at most window requests in flight at once.
func NewCore(cpuID int, sim *simulator.Simulator, src trace.Source, window int) *Core {
	return &Core{
		cpuID:  cpuID,
		sim:    sim,
		src:    src,
		window: window,
	}
}

// Step retires every finished in-flight request, then issues fresh
// references from the trace source until the window is full or the
// source is exhausted. It returns false once the source is exhausted and
// every issued request has retired, meaning this core's run is over.
func (c *Core) Step() bool {
	c.retireFinished()

	for !c.exhausted && len(c.inFlight) < c.window {
		ref, ok := c.src.Next()
		if !ok {
			c.exhausted = true
			break
		}

		req := request.FromReference(c.cpuID, ref).
			WithIssueCycle(c.sim.Cycle()).
			Build()

		c.sim.IssueRequest(req)
		c.inFlight = append(c.inFlight, &inFlight{req: req, age: c.nextAge})
		c.nextAge++
	}

	return !c.exhausted || len(c.inFlight) > 0
}

func (c *Core) retireFinished() {
	kept := c.inFlight[:0]

	for _, entry := range c.inFlight {
		if entry.req.Finished {
			c.retired++
			continue
		}

		kept = append(kept, entry)
	}

	c.inFlight = kept
}

// Retired returns the number of references this core has fully retired.
func (c *Core) Retired() uint64 {
	return c.retired
}

// InFlightCount returns the number of currently outstanding requests,
// exposed for tests and progress reporting.
func (c *Core) InFlightCount() int {
	return len(c.inFlight)
}

// Done reports whether the trace source is exhausted and every issued
// request has retired.
func (c *Core) Done() bool {
	return c.exhausted && len(c.inFlight) == 0
}
