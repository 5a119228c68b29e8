package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
)

// PACManMode selects which of the two PACMan dead-block policies (spec
// section 4.6, CmpPACMan) a cache runs.
type PACManMode int

const (
	// PACManH never promotes a prefetched line's position on a demand hit
	// until it has been reused at least once (PrefetchedUnused stays put),
	// on the theory that a still-unused prefetch shouldn't outrank lines
	// already proven useful.
	PACManH PACManMode = iota
	// PACManM additionally inserts prefetched lines at Low priority
	// outright, compounding H's non-promotion with pessimistic placement.
	PACManM
)

// PACMan is the prefetch-aware cache replacement family: it tracks each
// line's PrefetchState (cache.Line already carries the field; this
// variant is what actually maintains it) and uses that state, rather than
// a separate predictor table, to decide both insertion priority and
// whether a demand hit counts as a promoting access.
type PACMan struct {
	Base

	mode       PACManMode
	setDueling bool
	duel       *tagstore.Duel
}

// PACManConfig selects the dead-block mode alongside the shared Config.
// SetDueling/NumLeaderSet/NumApps only take effect in PACManM mode,
// dueling PACMan-M's pessimistic Low-priority prefetch insertion
// (strategy A) against the baseline default priority (strategy B) per
// spec section 4.6's "pval depending on set-dueling between PACMan and
// baseline", with one PSEL counter per app (NumApps, default 1) per
// spec section 4.3's per-application set dueling.
type PACManConfig struct {
	Config
	Mode         PACManMode `param:"mode"`
	SetDueling   bool       `param:"setDueling"`
	NumLeaderSet int        `param:"numLeaderSet"`
	NumApps      int        `param:"numApps"`
}

// NewPACMan constructs a PACMan cache in either H or M mode.
func NewPACMan(name string, router component.Router, cfg PACManConfig) *PACMan {
	cfg.Config.RejectWrites = true

	c := &PACMan{mode: cfg.Mode}
	c.Init(name, router, cfg.Config)

	if cfg.Mode == PACManM && cfg.SetDueling {
		numSets := (cfg.Config.SizeKB * 1024) / (cfg.Config.BlockBytes * cfg.Config.Associativity)
		numApps := cfg.NumApps
		if numApps < 1 {
			numApps = 1
		}

		c.setDueling = true
		c.duel = tagstore.NewDuel(numSets, cfg.NumLeaderSet, numApps)
	}

	c.SetHooks(Hooks{
		OnMiss:      c.onMiss,
		OnHit:       c.onHit,
		OnBuildLine: c.onBuildLine,
	})

	return c
}

func (c *PACMan) onBuildLine(req *request.Request) Line {
	line := Line{Dirty: req.DirtyReply}

	if req.Type == request.Prefetch {
		line.PrefetchState = PrefetchedUnused
		line.PrefetcherID = req.PrefetcherID
	}

	return line
}

func (c *PACMan) onMiss(req *request.Request, addr uint64) tagstore.PVal {
	if req.Type != request.Prefetch {
		return c.Config().DefaultPVal
	}

	if c.mode != PACManM {
		return c.Config().DefaultPVal
	}

	if !c.setDueling {
		return tagstore.Low
	}

	set, _ := c.Store().Split(addr)
	c.duel.RecordMiss(int(set), req.CPUID)

	return c.duel.Pick(int(set), req.CPUID, tagstore.Low, c.Config().DefaultPVal)
}

// onHit is PACMan's core trick: a demand hit on a line still marked
// PrefetchedUnused is serviced (the data is returned) but does not count
// as a promoting access, since a line nobody has touched yet shouldn't be
// treated as more valuable than lines with a proven reuse history. The
// state flips to PrefetchedUsed in place, via the table's index accessor
// rather than Store().Update, specifically so this transition itself
// never touches the replacement policy either. Any other state promotes
// normally.
func (c *PACMan) onHit(_ *request.Request, addr uint64, line Line) (promote bool) {
	if line.PrefetchState != PrefetchedUnused {
		return true
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
