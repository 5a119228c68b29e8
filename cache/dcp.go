package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/primitives"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
	"github.com/sarchlab/cachesim/vts"
)

// prefetchAccuracy is a per-prefetcher running tally of issued-vs-used
// prefetches, consulted by DCP to decide whether a given prefetcher's
// output is currently trustworthy enough to cache at a normal priority.
type prefetchAccuracy struct {
	issued primitives.Saturating
	used   primitives.Saturating
}

func (a *prefetchAccuracy) accurate() bool {
	return a.used.Value()*2 > a.issued.Value()
}

// DCP is decoupled caching+prefetching (spec section 4.6, CmpDCP): a
// prefetched line that nobody ever touched before eviction is recorded in
// the D-EAF (an inverted-prefetch evicted-address filter, implemented
// here by the same vts.Store used for CmpLLCVTS's eviction filter); a
// later demand miss that hits the D-EAF is taken as proof the prefetch
// was evicted too early and installs at High. A per-prefetcher accuracy
// counter tracks issued-vs-used prefetches; a prefetcher whose accuracy
// has fallen below 50% has its output installed at Low, or dropped
// entirely (never cached) when DropInaccurate is set. A demand hit on a
// still-unused prefetched line demotes on use: the state flips to
// PrefetchedUsed but the access does not promote the line's replacement
// position, mirroring PACMan-H's non-promoting hit.
type DCP struct {
	Base

	deaf           vts.Store
	accuracy       map[string]*prefetchAccuracy
	dropInaccurate bool
}

// DCPConfig adds the D-EAF sizing and drop-on-inaccurate switch to Config.
type DCPConfig struct {
	Config
	DEAFCapacity   int      `param:"deafCapacity"`
	DEAFMode       vts.Mode `param:"deafMode"`
	DropInaccurate bool     `param:"dropInaccurate"`
}

// NewDCP constructs a DCP cache.
func NewDCP(name string, router component.Router, cfg DCPConfig) *DCP {
	cfg.Config.RejectWrites = true

	c := &DCP{
		deaf:           vts.New(cfg.DEAFMode, cfg.DEAFCapacity),
		accuracy:       make(map[string]*prefetchAccuracy),
		dropInaccurate: cfg.DropInaccurate,
	}
	c.Init(name, router, cfg.Config)

	c.SetHooks(Hooks{
		OnMiss:          c.onMiss,
		OnHit:           c.onHit,
		OnEvict:         c.onEvict,
		OnBeforeInstall: c.onBeforeInstall,
		OnBuildLine:     c.onBuildLine,
	})

	return c
}

func (c *DCP) accuracyOf(prefetcherID string) *prefetchAccuracy {
	a, ok := c.accuracy[prefetcherID]
	if !ok {
		a = &prefetchAccuracy{
			issued: primitives.NewSaturating(0, 1<<30),
			used:   primitives.NewSaturating(0, 1<<30),
		}
		c.accuracy[prefetcherID] = a
	}

	return a
}

func (c *DCP) onMiss(req *request.Request, addr uint64) tagstore.PVal {
	if req.Type == request.Prefetch {
		if !c.accuracyOf(req.PrefetcherID).accurate() {
			return tagstore.Low
		}

		if c.deaf.Test(addr) {
			return tagstore.High
		}

		return tagstore.Bimodal
	}

	if c.deaf.Test(addr) {
		return tagstore.High
	}

	return c.Config().DefaultPVal
}

func (c *DCP) onHit(_ *request.Request, addr uint64, line Line) (promote bool) {
	if line.PrefetchState == PrefetchedUnused {
		if line.PrefetcherID != "" {
			c.accuracyOf(line.PrefetcherID).used.Increment()
		}

		set, tag := c.Store().Split(addr)
		table := c.Store().Table(set)

		if entry := table.Peek(tag); entry.Valid {
			if v, ok := table.ValueAt(entry.Index); ok {
				v.PrefetchState = PrefetchedUsed
			}
		}

		return false
	}

	return true
}

func (c *DCP) onEvict(_ *request.Request, victimAddr uint64, victim Line) {
	if victim.PrefetchState == PrefetchedUnused {
		c.deaf.Insert(victimAddr)
	}
}

// onBeforeInstall tallies every prefetch install attempt against its
// prefetcher's accuracy counter, then, when DropInaccurate is enabled,
// drops the install outright once that prefetcher's accuracy has fallen
// below threshold; a dropped prefetch is still "serviced" from the
// requester's perspective (Base already flipped it to the return
// direction by this point) but never occupies a line.
func (c *DCP) onBeforeInstall(req *request.Request, _ uint64, _ tagstore.Entry[uint64, Line], _ bool) bool {
	if req.Type != request.Prefetch {
		return true
	}

	acc := c.accuracyOf(req.PrefetcherID)
	acc.issued.Increment()

	if !c.dropInaccurate {
		return true
	}

	return acc.accurate()
}

func (c *DCP) onBuildLine(req *request.Request) Line {
	line := Line{Dirty: req.DirtyReply}

	if req.Type == request.Prefetch {
		line.PrefetchState = PrefetchedUnused
		line.PrefetcherID = req.PrefetcherID
	}

	return line
}
