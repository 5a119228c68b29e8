package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
	"github.com/sarchlab/cachesim/vts"
)

// fdpCounters is one prefetcher's feedback-directed-prefetching running
// average window (spec section 4.6): a current window's issued/used
// counts, folded half-and-half into the long-running average every time
// the window closes.
type fdpCounters struct {
	avgPrefetches int
	avgUsed       int
	curPrefetches int
	curUsed       int
	evictions     int
}

// accurate reports the window-close test: the running total of used
// prefetches, doubled, exceeds the running total issued.
func (c *fdpCounters) accurate() bool {
	total := c.avgPrefetches + c.curPrefetches
	used := c.avgUsed + c.curUsed

	return used*2 > total
}

// rollIfDue halves both running averages into the current window's
// counts once every windowSize evictions charged to this prefetcher,
// matching the spec's "halved every N/2 evictions" decay.
func (c *fdpCounters) rollIfDue(windowSize int) {
	c.evictions++
	if c.evictions < windowSize {
		return
	}

	c.avgPrefetches = (c.avgPrefetches + c.curPrefetches) / 2
	c.avgUsed = (c.avgUsed + c.curUsed) / 2
	c.curPrefetches = 0
	c.curUsed = 0
	c.evictions = 0
}

// FDP is feedback-directed prefetching's cache-side half (spec section
// 4.6, CmpFDP / CmpFDPAP): every prefetcher's issued-vs-used counts are
// tracked in a decaying running average; a prefetcher whose current
// accuracy reading is below 50% has its lines installed at Low instead
// of the ordinary default. FDP-AP (AccuracyEAF) additionally remembers,
// in a small evicted-address filter, blocks evicted by an inaccurate
// prefetcher while still unused; if that same block later misses again as
// a prefetch while the prefetcher is still rated inaccurate, the block
// installs at the ordinary default priority rather than Low. Demand
// misses always install at the default priority and do not consult the
// filter.
type FDP struct {
	Base

	windowSize int
	counters   map[string]*fdpCounters
	lateEAF    vts.Store
	useLateEAF bool
}

// FDPConfig selects plain FDP or FDP-AP (UseLateReuseEAF) alongside the
// shared Config and window size.
type FDPConfig struct {
	Config
	WindowSize      int      `param:"windowSize"`
	UseLateReuseEAF bool     `param:"useLateReuseEAF"`
	LateEAFCapacity int      `param:"lateEAFCapacity"`
	LateEAFMode     vts.Mode `param:"lateEAFMode"`
}

// NewFDP constructs an FDP (or, with UseLateReuseEAF, FDP-AP) cache.
func NewFDP(name string, router component.Router, cfg FDPConfig) *FDP {
	cfg.Config.RejectWrites = true

	c := &FDP{
		windowSize: cfg.WindowSize,
		counters:   make(map[string]*fdpCounters),
		useLateEAF: cfg.UseLateReuseEAF,
	}

	if cfg.UseLateReuseEAF {
		c.lateEAF = vts.New(cfg.LateEAFMode, cfg.LateEAFCapacity)
	}

	c.Init(name, router, cfg.Config)

	c.SetHooks(Hooks{
		OnMiss:      c.onMiss,
		OnHit:       c.onHit,
		OnEvict:     c.onEvict,
		OnBuildLine: c.onBuildLine,
	})

	return c
}

func (c *FDP) countersFor(prefetcherID string) *fdpCounters {
	ctr, ok := c.counters[prefetcherID]
	if !ok {
		ctr = &fdpCounters{}
		c.counters[prefetcherID] = ctr
	}

	return ctr
}

func (c *FDP) onMiss(req *request.Request, addr uint64) tagstore.PVal {
	if req.Type != request.Prefetch {
		return c.Config().DefaultPVal
	}

	ctr := c.countersFor(req.PrefetcherID)
	ctr.curPrefetches++

	if ctr.accurate() {
		return c.Config().DefaultPVal
	}

	if c.useLateEAF && c.lateEAF.Test(addr) {
		return c.Config().DefaultPVal
	}

	return tagstore.Low
}

func (c *FDP) onHit(_ *request.Request, _ uint64, line Line) (promote bool) {
	if line.PrefetchState == PrefetchedUnused && line.PrefetcherID != "" {
		ctr := c.countersFor(line.PrefetcherID)
		ctr.curUsed++
	}

	return true
}

func (c *FDP) onEvict(_ *request.Request, victimAddr uint64, victim Line) {
	if victim.PrefetcherID == "" {
		return
	}

	ctr := c.countersFor(victim.PrefetcherID)
	ctr.rollIfDue(c.windowSize)

	if c.useLateEAF && victim.PrefetchState == PrefetchedUnused && !ctr.accurate() {
		c.lateEAF.Insert(victimAddr)
	}
}

func (c *FDP) onBuildLine(req *request.Request) Line {
	line := Line{Dirty: req.DirtyReply}

	if req.Type == request.Prefetch {
		line.PrefetchState = PrefetchedUnused
		line.PrefetcherID = req.PrefetcherID
	}

	return line
}
