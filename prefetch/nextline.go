// Package prefetch implements the trigger-driven prefetchers of spec
// section 4.8: components that sit inline in a core's pipeline, watch the
// demand traffic pass through unmodified, and spawn their own Prefetch
// requests toward the next stage when their trigger condition fires.
package prefetch

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

// NextLineConfig configures a next-line prefetcher (spec section 4.8,
// CmpNextLinePrefetcher): on every demand read, issue Degree prefetches
// at successive block addresses past the one just requested.
type NextLineConfig struct {
	Degree          int  `param:"degree"`
	BlockBytes      int  `param:"blockBytes"`
	PrefetchOnWrite bool `param:"prefetchOnWrite"`
	Latency         int  `param:"latency"`
}

// NextLine is the simplest trigger prefetcher: every eligible demand
// access spawns a fixed run of sequential-block prefetches.
type NextLine struct {
	component.Base

	cfg NextLineConfig
}

// NewNextLine constructs a next-line prefetcher.
func NewNextLine(name string, router component.Router, cfg NextLineConfig) *NextLine {
	c := &NextLine{cfg: cfg}
	c.Base.Init(name, router, c)

	return c
}

// eligible mirrors CmpNextLinePrefetcher's filter: Writeback and Prefetch
// requests never trigger, and ReadForWrite only triggers when configured
// to prefetch on writes.
func (c *NextLine) eligible(req *request.Request) bool {
	switch req.Type {
	case request.Write, request.Writeback, request.Prefetch:
		return false
	case request.ReadForWrite:
		return c.cfg.PrefetchOnWrite
	default:
		return true
	}
}

// ProcessRequest snoops the passing demand request and, if it qualifies,
// spawns Degree sequential prefetches; the triggering request itself is
// left untouched so the component's default forward routing carries it
// on to the next stage.
func (c *NextLine) ProcessRequest(req *request.Request) int {
	if !c.eligible(req) {
		return 0
	}

	vaddr := req.VAddr
	paddr := req.PAddr

	for i := 0; i < c.cfg.Degree; i++ {
		vaddr += uint64(c.cfg.BlockBytes)
		paddr += uint64(c.cfg.BlockBytes)

		pf := request.NewBuilder(req.CPUID).
			WithType(request.Prefetch).
			WithIniRef(component.Handle(c)).
			WithAddresses(req.IP, vaddr, paddr).
			WithSize(uint32(c.cfg.BlockBytes)).
			WithICount(req.ICount).
			WithCmpID(req.CmpID).
			WithCurrentCycle(req.CurrentCycle).
			WithPrefetcher(c.Name(), 0).
			Build()

		c.SendForward(pf)
	}

	return c.cfg.Latency
}

// ProcessReturn self-destructs any prefetch this component spawned once
// it comes back around; everything else (a demand request returning from
// a later stage) is left alone to continue its own backward routing.
func (c *NextLine) ProcessReturn(req *request.Request) int {
	if req.IniType == request.InitiatorComponent && req.IniRef == component.Handle(c) {
		req.Destroy = true
	}

	return 0
}
