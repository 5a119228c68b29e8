package cache

import (
	"math/bits"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/primitives"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
)

// dbiRow is one dirty-bit-index entry: a bitset of g per-block dirty bits
// for the g consecutive blocks sharing tag>>g, replacing the ordinary
// per-block Line.Dirty bit this variant's data array never sets.
type dbiRow struct {
	bits uint32
}

// Weight reports the row's population count, so a MaxW policy can prefer
// evicting (or a MinW policy prefer keeping) rows with the most or fewest
// dirty bits set.
func (r dbiRow) Weight() int { return bits.OnesCount32(r.bits) }

// DBIConfig adds the dirty-bit-index granularity and optional dynamic
// bypass threshold to the shared Config. NumApps (default 1) sizes the
// per-application leader-set assignment the dynamic-bypass measurement
// uses, per spec section 4.3's per-application set dueling.
type DBIConfig struct {
	Config
	DirtyBitsPerRow int     `param:"dirtyBitsPerRow"`
	DBIRows         int     `param:"dbiRows"`
	BypassEnabled   bool    `param:"bypassEnabled"`
	MissRateWindow  int     `param:"missRateWindow"`
	BypassThreshold float64 `param:"bypassThreshold"` // fraction, e.g. 0.5
	NumApps         int     `param:"numApps"`
}

// LLCwAWB is the adaptive-writeback / dirty-bit-index LLC (spec section
// 4.6, CmpLLCwAWB). It keeps its main data array exactly like a plain
// cache.Base cache, but pairs it with a separate, independently-sized
// dirty-bit-index table keyed on tag>>g, whose value is the g-bit dirty
// bitset for that row of g consecutive blocks. A Writeback sets the
// corresponding bit in its row instead of touching any per-line dirty
// flag. Evicting a DBI row emits a Writeback for every set bit. A Clean
// request walks the most-recently-evicted row's set bits one at a time,
// re-enqueuing itself one cycle after this component's local clock; it
// does not inspect the queued demand requests, so a demand Read stamped
// later than that cycle is processed after the next Clean step.
type LLCwAWB struct {
	Base

	dbi          *tagstore.Table[uint64, dbiRow]
	rowBits      uint
	cleanPending []uint64 // block addresses still owed a writeback by the active Clean walk

	bypassEnabled   bool
	bypassThreshold float64
	missWindow      int
	duel            *tagstore.Duel
	missesHigh      map[int]*primitives.Saturating
	missesBimodal   map[int]*primitives.Saturating
}

// NewLLCwAWB constructs a DBI/adaptive-writeback LLC.
func NewLLCwAWB(name string, router component.Router, cfg DBIConfig) *LLCwAWB {
	cfg.Config.RejectWrites = true

	c := &LLCwAWB{
		dbi:             tagstore.New[uint64, dbiRow](cfg.DBIRows, tagstore.NewMaxW()),
		rowBits:         uint(bits.Len(uint(cfg.DirtyBitsPerRow - 1))),
		bypassEnabled:   cfg.BypassEnabled,
		bypassThreshold: cfg.BypassThreshold,
		missWindow:      cfg.MissRateWindow,
		missesHigh:      make(map[int]*primitives.Saturating),
		missesBimodal:   make(map[int]*primitives.Saturating),
	}
	c.Init(name, router, cfg.Config)

	numSets := (cfg.Config.SizeKB * 1024) / (cfg.Config.BlockBytes * cfg.Config.Associativity)
	numApps := cfg.NumApps
	if numApps < 1 {
		numApps = 1
	}

	c.duel = tagstore.NewDuel(numSets, leaderSetCountFor(numSets), numApps)

	c.SetHooks(Hooks{
		OnMiss:          c.onMiss,
		OnBeforeInstall: c.onBeforeInstall,
	})
	c.SetRequestOverride(c)

	return c
}

// leaderSetCountFor picks a small, capped number of dueling leader sets
// relative to the cache's total set count: numSets/32, at least 1 and at
// most numSets/2.
func leaderSetCountFor(numSets int) int {
	n := numSets / 32
	if n < 1 {
		n = 1
	}

	if n > numSets/2 {
		n = numSets / 2
	}

	return n
}

func (c *LLCwAWB) rowOf(addr uint64) (row uint64, bit uint) {
	set, tag := c.Store().Split(addr)
	full := tag<<c.rowSetShift() | set

	return full >> c.rowBits, uint(full & (1<<c.rowBits - 1))
}

// rowSetShift is the bit width of a set index, needed to fold (set, tag)
// back into one flat block-index space the DBI table's row key is
// carved from.
func (c *LLCwAWB) rowSetShift() uint {
	return uint(bits.Len(uint(c.Store().NumSets() - 1)))
}

// TryProcessRequest intercepts Writeback (to flip a DBI bit instead of a
// line's dirty flag) and Clean (the self-recurring drain walk); anything
// else falls through to Base's default handling.
func (c *LLCwAWB) TryProcessRequest(req *request.Request) (busy int, handled bool) {
	switch req.Type {
	case request.Writeback:
		return c.processDirtyMark(req), true
	case request.Clean:
		return c.processClean(req), true
	default:
		return 0, false
	}
}

func (c *LLCwAWB) processDirtyMark(req *request.Request) int {
	addr := request.BlockAddr(req.PAddr, uint32(c.Config().BlockBytes))
	row, bit := c.rowOf(addr)

	entry := c.dbi.Read(row, tagstore.Bimodal)
	value := entry.Value
	if !entry.Valid {
		evicted := c.dbi.Insert(row, dbiRow{}, tagstore.Bimodal)
		if evicted.Valid {
			c.drainRow(evicted.Key, evicted.Value, req)
		}

		value = dbiRow{}
	}

	value.bits |= 1 << bit
	c.dbi.Update(row, value, tagstore.Bimodal)

	req.Serviced = true

	return c.Config().TagStoreLat
}

// drainRow queues writebacks for every dirty bit an evicted DBI row held.
func (c *LLCwAWB) drainRow(row uint64, value dbiRow, req *request.Request) {
	for bit := uint(0); bit < 1<<c.rowBits; bit++ {
		if value.bits&(1<<bit) == 0 {
			continue
		}

		full := row<<c.rowBits | uint64(bit)
		set := full & (uint64(1)<<c.rowSetShift() - 1)
		tag := full >> c.rowSetShift()
		addr := c.Store().Combine(set, tag)

		c.cleanPending = append(c.cleanPending, addr)
	}

	if len(c.cleanPending) > 0 {
		c.scheduleClean(req)
	}
}

func (c *LLCwAWB) scheduleClean(req *request.Request) {
	clean := request.NewBuilder(req.CPUID).
		WithType(request.Clean).
		WithAddresses(0, 0, 0).
		WithCmpID(req.CmpID).
		WithCurrentCycle(c.LocalCycle() + 1).
		Build()
	clean.IniType = request.InitiatorComponent
	clean.IniRef = component.Handle(c)

	c.SimpleAddRequest(clean)
}

// processClean drains one pending dirty block per invocation, re-
// scheduling itself one cycle after this component's local clock while
// blocks remain; the timing of queued demand traffic is not consulted.
func (c *LLCwAWB) processClean(req *request.Request) int {
	req.Destroy = true

	if len(c.cleanPending) == 0 {
		return 0
	}

	addr := c.cleanPending[0]
	c.cleanPending = c.cleanPending[1:]

	wb := request.NewBuilder(req.CPUID).
		WithType(request.Writeback).
		WithAddresses(0, 0, addr).
		WithSize(uint32(c.Config().BlockBytes)).
		WithCmpID(req.CmpID).
		WithCurrentCycle(c.LocalCycle() + 1).
		Build()
	wb.IniType = request.InitiatorComponent
	wb.IniRef = component.Handle(c)

	c.SendForward(wb)

	if len(c.cleanPending) > 0 {
		c.scheduleClean(req)
	}

	return 0
}

// TryProcessReturn never intercepts the return direction; Base's default
// install logic (enriched by OnBeforeInstall below for bypass) is enough.
func (c *LLCwAWB) TryProcessReturn(_ *request.Request) (busy int, handled bool) {
	return 0, false
}

// onMiss feeds the leader-set miss counters the dynamic-bypass decision
// reads, and otherwise defers to the configured default priority (DBI
// tracks dirtiness separately; it has no insertion-priority logic of its
// own beyond the bypass skip in onBeforeInstall).
func (c *LLCwAWB) onMiss(req *request.Request, addr uint64) tagstore.PVal {
	if c.bypassEnabled {
		set, _ := c.Store().Split(addr)

		switch {
		case c.duel.IsLeaderA(int(set), req.CPUID):
			c.counterFor(c.missesHigh, req.CPUID).Increment()
		case c.duel.IsLeaderB(int(set), req.CPUID):
			c.counterFor(c.missesBimodal, req.CPUID).Increment()
		}
	}

	return c.Config().DefaultPVal
}

func (c *LLCwAWB) counterFor(m map[int]*primitives.Saturating, cpuID int) *primitives.Saturating {
	ctr, ok := m[cpuID]
	if !ok {
		v := primitives.NewSaturating(0, c.missWindow)
		ctr = &v
		m[cpuID] = ctr
	}

	return ctr
}

// onBeforeInstall implements the optional dynamic-bypass mode: once a
// CPU's minimum of its High-leader-set and Bimodal-leader-set miss rates
// exceeds the threshold, only leader sets keep installing (so the
// measurement keeps working); every other set's miss is serviced but
// never cached.
func (c *LLCwAWB) onBeforeInstall(req *request.Request, addr uint64, _ tagstore.Entry[uint64, Line], _ bool) bool {
	if !c.bypassEnabled {
		return true
	}

	set, _ := c.Store().Split(addr)
	if c.duel.IsLeaderA(int(set), req.CPUID) || c.duel.IsLeaderB(int(set), req.CPUID) {
		return true
	}

	return !c.overThreshold(req.CPUID)
}

func (c *LLCwAWB) overThreshold(cpuID int) bool {
	high := c.rateFor(c.missesHigh, cpuID)
	bimodal := c.rateFor(c.missesBimodal, cpuID)

	rate := high
	if bimodal < rate {
		rate = bimodal
	}

	return rate > c.bypassThreshold
}

func (c *LLCwAWB) rateFor(m map[int]*primitives.Saturating, cpuID int) float64 {
	ctr, ok := m[cpuID]
	if !ok {
		return 0
	}

	if ctr.Max() == 0 {
		return 0
	}

	return float64(ctr.Value()) / float64(ctr.Max())
}
