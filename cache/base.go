// Package cache implements the cache pipeline stage shared by every
// replacement-policy variant the spec names, plus the MSHR stage each
// one sits in front of.
package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim/stats"
	"github.com/sarchlab/cachesim/tagstore"
)

// Config bundles the construction-time geometry and latency parameters
// every variant shares (spec section 4.5).
type Config struct {
	SizeKB        int  `param:"sizeKB"`
	BlockBytes    int  `param:"blockBytes"`
	Associativity int  `param:"associativity"`
	TagStoreLat   int  `param:"tagStoreLat"`
	DataStoreLat  int  `param:"dataStoreLat"`
	RejectWrites  bool `param:"rejectWrites"` // true for LLC-class caches
	CoercePartial bool `param:"coercePartial"` // true for the L1-class CmpCache
	Exclusive     bool `param:"exclusive"`
	DefaultPVal   tagstore.PVal
	PolicyFactory func() tagstore.Policy
}

// Hooks are the seams every variant's distinctive logic (spec section
// 4.6) plugs into, so the shared forward/return/eviction skeleton in this
// file never has to change shape to accommodate a new policy.
type Hooks struct {
	// OnMiss picks the insertion priority for a newly-installed line.
	// Defaults to cfg.DefaultPVal.
	OnMiss func(req *request.Request, addr uint64) tagstore.PVal

	// OnHit runs on every tag-store hit from the read-class forward path.
	// Returning promote=false performs a non-mutating peek instead of the
	// default promoting access, for policies (PACMan-H) that decline to
	// move a still-unused prefetched line up the replacement order on a
	// demand hit.
	OnHit func(req *request.Request, addr uint64, line Line) (promote bool)

	// OnBeforeInstall runs immediately before a miss is installed, once
	// the would-be victim (if the set is full) has been identified.
	// Returning false skips installation entirely: the request is still
	// serviced, but the block is never cached (RTB's region-counter
	// bypass, DBI/AWB's dynamic bypass).
	OnBeforeInstall func(req *request.Request, addr uint64, victim tagstore.Entry[uint64, Line], hasVictim bool) bool

	// OnEvict fires with the victim's reconstructed address and value,
	// immediately after the install path chose it but before its slot is
	// reused, letting a variant react (feed a VTS, bump a miss-counter
	// table) without the forward/return skeleton needing to know about
	// any of that bookkeeping.
	OnEvict func(req *request.Request, victimAddr uint64, victim Line)

	// OnBuildLine constructs the Line value a returning fetch installs.
	// Defaults to Line{Dirty: req.DirtyReply}. Variants that track
	// PrefetchState/PrefetcherID (DCP, PACMan, FDP) override this to stamp
	// that bookkeeping onto the line at the moment it is created, since
	// Base itself has no notion of prefetch tracking.
	OnBuildLine func(req *request.Request) Line
}

// RequestOverride lets a variant intercept a forward or returning request
// before Base's default read/write/writeback handling runs, for request
// types or decisions the shared skeleton does not model (DBI/AWB's
// self-recurring Clean walk).
// Handled=false falls through to Base's default logic for that direction.
type RequestOverride interface {
	TryProcessRequest(req *request.Request) (busy int, handled bool)
	TryProcessReturn(req *request.Request) (busy int, handled bool)
}

// Base implements the shared forward/return/eviction contract every
// cache variant is built on (spec section 4.5). Variants customize
// behavior through Hooks and, when that seam is not enough, a
// RequestOverride, rather than overriding methods: Go has no virtual
// dispatch through struct embedding, so Base's own ProcessRequest/
// ProcessReturn are always what the component framework's drain loop
// calls, whichever concrete variant embeds Base.
type Base struct {
	component.Base

	cfg      Config
	store    *tagstore.GenericTagStore[Line]
	hooks    Hooks
	override RequestOverride

	hitCounter       stats.Handle
	missCounter      stats.Handle
	evictionCounter  stats.Handle
	writebackCounter stats.Handle

	missSampler func(ip uint64)
}

// SetMissSampler installs a callback invoked with req.IP on every
// read-class miss, the seam the profiling package's IP-keyed pprof
// sampler attaches through without this package needing to know
// anything about pprof.
func (b *Base) SetMissSampler(f func(ip uint64)) {
	b.missSampler = f
}

// Init wires a Base cache's tag store and hooks. Must be called from the
// embedding variant's constructor before first use.
func (b *Base) Init(name string, router component.Router, cfg Config) {
	b.cfg = cfg

	numSets := (cfg.SizeKB * 1024) / (cfg.BlockBytes * cfg.Associativity)
	b.store = tagstore.NewGenericTagStore[Line](numSets, cfg.Associativity, cfg.BlockBytes, cfg.PolicyFactory)

	b.hooks = Hooks{}

	b.Base.Init(name, router, b)

	b.hitCounter = b.Stats.Register("hits", "read-class hits")
	b.missCounter = b.Stats.Register("misses", "read-class misses")
	b.evictionCounter = b.Stats.Register("evictions", "lines evicted")
	b.writebackCounter = b.Stats.Register("writebacks", "writebacks absorbed")
}

// SetHooks installs the variant-specific decision points. Any nil field
// keeps Base's default behavior (cfg.DefaultPVal, always promote, always
// install, no eviction side effect).
func (b *Base) SetHooks(h Hooks) { b.hooks = h }

// SetRequestOverride installs a RequestOverride consulted before Base's
// own ProcessRequest/ProcessReturn logic.
func (b *Base) SetRequestOverride(o RequestOverride) { b.override = o }

// Store exposes the underlying tag store to variant logic that needs
// direct lookups beyond the standard forward/return path.
func (b *Base) Store() *tagstore.GenericTagStore[Line] { return b.store }

// Config returns the cache's construction-time configuration.
func (b *Base) Config() Config { return b.cfg }

func (b *Base) blockAddr(req *request.Request) uint64 {
	return request.BlockAddr(req.PAddr, uint32(b.cfg.BlockBytes))
}

func (b *Base) onMiss(req *request.Request, addr uint64) tagstore.PVal {
	if b.hooks.OnMiss != nil {
		return b.hooks.OnMiss(req, addr)
	}

	return b.cfg.DefaultPVal
}

func (b *Base) onEvict(req *request.Request, victimAddr uint64, victim Line) {
	if b.hooks.OnEvict != nil {
		b.hooks.OnEvict(req, victimAddr, victim)
	}
}

func (b *Base) beforeInstall(req *request.Request, addr uint64, victim tagstore.Entry[uint64, Line], hasVictim bool) bool {
	if b.hooks.OnBeforeInstall != nil {
		return b.hooks.OnBeforeInstall(req, addr, victim, hasVictim)
	}

	return true
}

func (b *Base) buildLine(req *request.Request) Line {
	if b.hooks.OnBuildLine != nil {
		return b.hooks.OnBuildLine(req)
	}

	return Line{Dirty: req.DirtyReply}
}

// ProcessRequest implements the forward direction of spec section 4.5.
func (b *Base) ProcessRequest(req *request.Request) int {
	if b.override != nil {
		if busy, handled := b.override.TryProcessRequest(req); handled {
			return busy
		}
	}

	addr := b.blockAddr(req)

	switch req.Type {
	case request.Writeback:
		return b.processWritebackForward(addr, req)

	case request.Write, request.PartialWrite:
		if b.cfg.CoercePartial && req.Type == request.PartialWrite && int(req.Size) == b.cfg.BlockBytes {
			req.Type = request.Writeback
			return b.processWritebackForward(addr, req)
		}

		if b.cfg.RejectWrites {
			panic(b.Name() + ": received direct Write/PartialWrite; an LLC-class cache only accepts writes via Writeback")
		}

		return b.processReadClass(addr, req)

	default: // Read, ReadForWrite, Prefetch
		return b.processReadClass(addr, req)
	}
}

// processReadClass handles Read/ReadForWrite/Prefetch forward traffic: a
// hit flips the request to the return direction (Serviced=true) so the
// framework's routing carries it back to its originator; a miss leaves
// Serviced false so it continues forward toward the next pipeline stage,
// where an MSHR-class component is responsible for any real stalling.
func (b *Base) processReadClass(addr uint64, req *request.Request) int {
	peeked := b.store.Peek(addr)
	if !peeked.Valid {
		b.Stats.Inc(b.missCounter)

		if b.missSampler != nil {
			b.missSampler(req.IP)
		}

		return b.cfg.TagStoreLat
	}

	b.Stats.Inc(b.hitCounter)

	promote := true
	if b.hooks.OnHit != nil {
		promote = b.hooks.OnHit(req, addr, peeked.Value)
	}

	if promote {
		b.store.Read(addr, b.cfg.DefaultPVal)
	}

	req.Serviced = true

	return b.cfg.TagStoreLat + b.cfg.DataStoreLat
}

// processWritebackForward absorbs a writeback at the first cache level
// that accepts it: a hit just marks the resident line dirty, a miss
// installs a fresh dirty line. Either way the writeback is done once it
// reaches a level that holds (or now holds) the block, so it always flips
// to the return direction.
func (b *Base) processWritebackForward(addr uint64, req *request.Request) int {
	b.Stats.Inc(b.writebackCounter)

	entry := b.store.Read(addr, b.cfg.DefaultPVal)
	if entry.Valid {
		line := entry.Value
		line.Dirty = true
		b.store.Update(addr, line, b.cfg.DefaultPVal)
		req.Serviced = true

		return b.cfg.TagStoreLat
	}

	b.install(addr, Line{Dirty: true}, req)
	req.Serviced = true

	return b.cfg.TagStoreLat
}

// ProcessReturn implements the return direction: install the fetched
// block unless this component itself spawned the writeback now
// returning to it, in which case it self-destructs.
func (b *Base) ProcessReturn(req *request.Request) int {
	if b.override != nil {
		if busy, handled := b.override.TryProcessReturn(req); handled {
			return busy
		}
	}

	if req.IniType == request.InitiatorComponent && req.IniRef == component.Handle(b) {
		req.Destroy = true
		return 0
	}

	addr := b.blockAddr(req)
	b.install(addr, b.buildLine(req), req)

	return b.cfg.DataStoreLat
}

func (b *Base) install(addr uint64, line Line, req *request.Request) {
	set, tag := b.store.Split(addr)
	table := b.store.Table(set)

	var victim tagstore.Entry[uint64, Line]
	hasVictim := false

	if table.Len() >= table.Capacity() {
		victim = table.ToBeEvicted()
		hasVictim = victim.Valid
	}

	if !b.beforeInstall(req, addr, victim, hasVictim) {
		return
	}

	if hasVictim {
		b.evict(req, set, victim)
	}

	pval := b.onMiss(req, addr)

	// InsertVictim reuses the victim ToBeEvicted already resolved above,
	// rather than letting Insert call the policy's VictimIndex a second
	// time and evict a different slot out from under the writeback and
	// OnEvict hook that already fired for this one.
	table.InsertVictim(tag, line, pval, victim, hasVictim)
}

// evict emits a writeback for a dirty (or, in exclusive mode, any) victim.
// cpuID/cmpID are taken from the request whose install triggered the
// eviction, so the spawned writeback starts at this same pipeline stage and
// flows forward from here exactly as the evicting request did.
func (b *Base) evict(req *request.Request, set uint64, victim tagstore.Entry[uint64, Line]) {
	victimAddr := b.store.Combine(set, victim.Key)
	b.Stats.Inc(b.evictionCounter)
	b.onEvict(req, victimAddr, victim.Value)

	if !victim.Value.Dirty && !b.cfg.Exclusive {
		return
	}

	wb := request.NewBuilder(req.CPUID).
		WithType(request.Writeback).
		WithAddresses(0, 0, victimAddr).
		WithSize(uint32(b.cfg.BlockBytes)).
		WithCmpID(req.CmpID).
		WithCurrentCycle(b.LocalCycle()).
		Build()
	wb.IniType = request.InitiatorComponent
	wb.IniRef = component.Handle(b)

	b.SendForward(wb)
}
