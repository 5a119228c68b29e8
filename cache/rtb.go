package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/primitives"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
)

// rtbRegionBits is the log2 of the region size (16 blocks per spec
// section 4.6's MAT definition).
const rtbRegionBits = 4

// RTBCache is the region-table bypass LLC (spec section 4.6, CmpRTBCache):
// a memory access table (MAT) keyed by 16-block region tracks a
// saturating hit-count counter per region. On a potential insertion that
// would require an eviction, the incoming block's region counter is
// compared against the would-be victim's region counter; the incoming
// line only displaces the victim if its region counter is at least as
// high, otherwise the install is skipped outright (a pure bypass, the
// block is serviced but never cached).
type RTBCache struct {
	Base

	mat        map[uint64]*primitives.Saturating
	counterMax int
}

// RTBConfig adds the MAT counter ceiling to the shared Config.
type RTBConfig struct {
	Config
	CounterMax int `param:"counterMax"`
}

// NewRTBCache constructs an RTB cache.
func NewRTBCache(name string, router component.Router, cfg RTBConfig) *RTBCache {
	cfg.Config.RejectWrites = true

	c := &RTBCache{
		mat:        make(map[uint64]*primitives.Saturating),
		counterMax: cfg.CounterMax,
	}
	c.Init(name, router, cfg.Config)

	c.SetHooks(Hooks{
		OnHit:           c.onHit,
		OnBeforeInstall: c.onBeforeInstall,
	})

	return c
}

func (c *RTBCache) regionOf(addr uint64) uint64 {
	regionBytes := uint64(c.Config().BlockBytes) << rtbRegionBits
	return addr / regionBytes
}

func (c *RTBCache) counterFor(region uint64) *primitives.Saturating {
	ctr, ok := c.mat[region]
	if !ok {
		v := primitives.NewSaturating(0, c.counterMax)
		ctr = &v
		c.mat[region] = ctr
	}

	return ctr
}

func (c *RTBCache) onHit(_ *request.Request, addr uint64, _ Line) (promote bool) {
	c.counterFor(c.regionOf(addr)).Increment()
	return true
}

// onBeforeInstall implements the candidate-vs-incoming region comparison.
// When there is no victim (a free slot exists), installation always
// proceeds: RTB only ever bypasses to avoid a genuinely harmful eviction.
func (c *RTBCache) onBeforeInstall(_ *request.Request, addr uint64, victim tagstore.Entry[uint64, Line], hasVictim bool) bool {
	if !hasVictim {
		return true
	}

	set, _ := c.Store().Split(addr)
	victimAddr := c.Store().Combine(set, victim.Key)

	incomingCounter := c.counterFor(c.regionOf(addr)).Value()
	candidateCounter := c.counterFor(c.regionOf(victimAddr)).Value()

	return incomingCounter >= candidateCounter
}
