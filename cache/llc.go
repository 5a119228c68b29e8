package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/tagstore"
)

// LLC is the baseline last-level cache (spec section 4.6, CmpLLC): a
// straight Base cache with a configurable fixed insertion priority and no
// other distinctive logic.
type LLC struct {
	Base
}

// NewLLC constructs a baseline LLC. cfg.DefaultPVal is the fixed insertion
// priority every install uses, a tagstore.PVal (Low=0, Bimodal=1,
// High=2). Config has no parameter-file key for it, so a parameter file
// does not set it.
func NewLLC(name string, router component.Router, cfg Config) *LLC {
	cfg.RejectWrites = true

	c := &LLC{}
	c.Init(name, router, cfg)

	return c
}

// L1 is the first-level, write-back, non-rejecting cache (CmpCache): it
// accepts direct Write/PartialWrite traffic and coerces a PartialWrite
// covering a whole block into a Writeback, per spec section 4.5.
type L1 struct {
	Base
}

// NewL1 constructs an L1-class cache.
func NewL1(name string, router component.Router, cfg Config) *L1 {
	cfg.RejectWrites = false
	cfg.CoercePartial = true

	c := &L1{}
	c.Init(name, router, cfg)

	return c
}

// NewLRUPolicy is a convenience PolicyFactory for configuring any variant
// with LRU as its replacement policy, the common default.
func NewLRUPolicy() tagstore.Policy { return tagstore.NewLRU() }
