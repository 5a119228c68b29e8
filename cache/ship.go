package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/primitives"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
)

// shipOutcome is the per-line bookkeeping SHiP-IP needs beyond the data a
// plain cache.Line already carries: which instruction pointer signature
// installed the line, and whether it was ever reused before eviction, so
// the outcome can be charged back to that signature's predictor entry.
type shipOutcome struct {
	signature uint64
	reused    bool
	valid     bool
}

// SHIPIP is the IP-indexed Signature-based Hit Predictor (spec section
// 4.6, CmpSHIPIP): the requester's instruction pointer (truncated to a
// fixed-width signature) indexes a table of saturating reuse counters,
// the SHCT. A signature whose counter currently predicts reuse inserts at
// High; one that does not predicts the line is dead on arrival and
// inserts at Low, the classic "bypass via pessimistic insertion" dead-
// block trick. On eviction, a line that was never touched again trains
// its owning signature's counter down; one that was reused trains it up.
type SHIPIP struct {
	Base

	shct          []primitives.Saturating
	signatureBits uint
	outcomes      map[uint64]shipOutcome

	setDueling bool
	duel       *tagstore.Duel
}

// SHIPConfig adds the SHCT sizing to the shared Config. SetDueling/
// NumLeaderSet/NumApps are optional, dueling the SHCT's own verdict
// (strategy A) against a fixed Bimodal insertion (strategy B) per spec
// section 4.6's "optional set-dueling between SHiP and plain bimodal",
// with one PSEL counter per app (NumApps, default 1) per spec section
// 4.3's per-application set dueling.
type SHIPConfig struct {
	Config
	SHCTEntries   int  `param:"shctEntries"`
	SHCTMax       int  `param:"shctMax"`
	SignatureBits uint `param:"signatureBits"`
	SetDueling    bool `param:"setDueling"`
	NumLeaderSet  int  `param:"numLeaderSet"`
	NumApps       int  `param:"numApps"`
}

// NewSHIPIP constructs a SHiP-IP cache.
func NewSHIPIP(name string, router component.Router, cfg SHIPConfig) *SHIPIP {
	cfg.Config.RejectWrites = true

	c := &SHIPIP{
		shct:          make([]primitives.Saturating, cfg.SHCTEntries),
		signatureBits: cfg.SignatureBits,
		outcomes:      make(map[uint64]shipOutcome),
	}

	for i := range c.shct {
		c.shct[i] = primitives.NewSaturating(cfg.SHCTMax/2, cfg.SHCTMax)
	}

	c.Init(name, router, cfg.Config)

	if cfg.SetDueling {
		numSets := (cfg.Config.SizeKB * 1024) / (cfg.Config.BlockBytes * cfg.Config.Associativity)
		numApps := cfg.NumApps
		if numApps < 1 {
			numApps = 1
		}

		c.setDueling = true
		c.duel = tagstore.NewDuel(numSets, cfg.NumLeaderSet, numApps)
	}

	c.SetHooks(Hooks{
		OnMiss:  c.onMiss,
		OnHit:   c.onHit,
		OnEvict: c.onEvict,
	})

	return c
}

func (c *SHIPIP) signatureOf(req *request.Request) uint64 {
	mask := uint64(1)<<c.signatureBits - 1
	return req.IP & mask
}

func (c *SHIPIP) predicts(sig uint64) bool {
	entry := &c.shct[sig%uint64(len(c.shct))]
	return entry.Value() > entry.Max()/2
}

func (c *SHIPIP) onMiss(req *request.Request, addr uint64) tagstore.PVal {
	sig := c.signatureOf(req)
	c.outcomes[addr] = shipOutcome{signature: sig, valid: true}

	shipPVal := tagstore.Low
	if c.predicts(sig) {
		shipPVal = tagstore.High
	}

	if !c.setDueling {
		return shipPVal
	}

	set, _ := c.Store().Split(addr)
	c.duel.RecordMiss(int(set), req.CPUID)

	return c.duel.Pick(int(set), req.CPUID, shipPVal, tagstore.Bimodal)
}

func (c *SHIPIP) onHit(_ *request.Request, addr uint64, _ Line) (promote bool) {
	if o, ok := c.outcomes[addr]; ok {
		o.reused = true
		c.outcomes[addr] = o
	}

	return true
}

func (c *SHIPIP) onEvict(_ *request.Request, victimAddr uint64, _ Line) {
	o, ok := c.outcomes[victimAddr]
	if !ok {
		return
	}

	delete(c.outcomes, victimAddr)

	entry := &c.shct[o.signature%uint64(len(c.shct))]
	if o.reused {
		entry.Increment()
	} else {
		entry.Decrement()
	}
}
