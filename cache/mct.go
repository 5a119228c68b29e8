package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
)

// MCT is the "miss counter tag" LLC (spec section 4.6, CmpMCT): each set
// remembers only the tag it most recently evicted. A miss that reinstalls
// exactly that tag (the classic thrashing signature of a working set one
// line too big for the set) installs at High priority; any other miss
// installs at the ordinary Bimodal priority.
type MCT struct {
	Base

	lastEvicted map[uint64]uint64
}

// NewMCT constructs a miss-counter-tagged LLC.
func NewMCT(name string, router component.Router, cfg Config) *MCT {
	cfg.RejectWrites = true

	c := &MCT{lastEvicted: make(map[uint64]uint64)}
	c.Init(name, router, cfg)

	c.SetHooks(Hooks{
		OnMiss:  c.onMiss,
		OnEvict: c.onEvict,
	})

	return c
}

func (c *MCT) onMiss(_ *request.Request, addr uint64) tagstore.PVal {
	set, tag := c.Store().Split(addr)

	if last, ok := c.lastEvicted[set]; ok && last == tag {
		return tagstore.High
	}

	return tagstore.Bimodal
}

func (c *MCT) onEvict(_ *request.Request, victimAddr uint64, _ Line) {
	set, tag := c.Store().Split(victimAddr)
	c.lastEvicted[set] = tag
}
