package prefetch

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/tagstore"
)

// strideEntry is one IP's training state (spec section 4.8,
// CmpStridePrefetcher): the last observed address, the stride computed
// from consecutive accesses at that IP, and how far training has
// progressed.
type strideEntry struct {
	vaddr, paddr uint64
	vpref, ppref uint64
	stride       int
	trainHits    int
	trained      bool
}

// StrideConfig configures a stride prefetcher.
type StrideConfig struct {
	Degree          int  `param:"degree"`
	BlockBytes      int  `param:"blockBytes"`
	PrefetchOnWrite bool `param:"prefetchOnWrite"`
	TableSize       int  `param:"tableSize"`
	NumTrains       int  `param:"numTrains"`
	Distance        int  `param:"distance"`
	Latency         int  `param:"latency"`
}

// Stride learns a constant per-IP address delta and, once trained,
// prefetches Degree blocks ahead along that stride.
type Stride struct {
	component.Base

	cfg   StrideConfig
	table *tagstore.Table[uint64, strideEntry]
}

// NewStride constructs a stride prefetcher.
func NewStride(name string, router component.Router, cfg StrideConfig) *Stride {
	c := &Stride{
		cfg:   cfg,
		table: tagstore.New[uint64, strideEntry](cfg.TableSize, tagstore.NewLRU()),
	}
	c.Base.Init(name, router, c)

	return c
}

func (c *Stride) eligible(req *request.Request) bool {
	switch req.Type {
	case request.Write, request.Writeback, request.Prefetch:
		return false
	case request.ReadForWrite:
		return c.cfg.PrefetchOnWrite
	default:
		return true
	}
}

// ProcessRequest trains or advances the IP's stride entry and, once
// trained, spawns up to Degree prefetches running ahead of the current
// address by multiples of the learned stride.
func (c *Stride) ProcessRequest(req *request.Request) int {
	if !c.eligible(req) {
		return 0
	}

	blockBytes := uint64(c.cfg.BlockBytes)
	vcla := req.VAddr - req.VAddr%blockBytes
	pcla := req.PAddr - req.PAddr%blockBytes

	row := c.table.Read(req.IP, tagstore.Bimodal)
	if !row.Valid {
		c.table.Insert(req.IP, strideEntry{vaddr: vcla, paddr: pcla}, tagstore.Bimodal)
		return 0
	}

	entry := row.Value

	vstride := (int(vcla) - int(entry.vaddr)) / int(blockBytes)
	if entry.stride != vstride {
		entry.trainHits = 0
		entry.trained = false
		entry.stride = vstride
	}

	entry.vaddr = vcla
	entry.paddr = pcla

	if !entry.trained {
		entry.trainHits++
		entry.vpref = vcla
		entry.ppref = pcla
	}

	if entry.trainHits >= c.cfg.NumTrains {
		entry.trained = true
	}

	if entry.stride == 0 {
		c.table.Update(req.IP, entry, tagstore.Bimodal)
		return 0
	}

	if !entry.trained {
		c.table.Update(req.IP, entry, tagstore.Bimodal)
		return 0
	}

	maxAddress := int64(entry.vaddr) + int64(c.cfg.Distance+1)*int64(entry.stride)*int64(blockBytes)
	maxPrefetches := int((maxAddress - int64(entry.vpref)) / int64(blockBytes))

	numPrefetches := maxPrefetches
	if numPrefetches > c.cfg.Degree {
		numPrefetches = c.cfg.Degree
	}

	for i := 0; i < numPrefetches; i++ {
		entry.vpref = uint64(int64(entry.vpref) + int64(entry.stride)*int64(blockBytes))
		entry.ppref = uint64(int64(entry.ppref) + int64(entry.stride)*int64(blockBytes))

		pf := request.NewBuilder(req.CPUID).
			WithType(request.Prefetch).
			WithIniRef(component.Handle(c)).
			WithAddresses(req.IP, entry.vpref, entry.ppref).
			WithSize(uint32(blockBytes)).
			WithICount(req.ICount).
			WithCmpID(req.CmpID).
			WithCurrentCycle(req.CurrentCycle).
			WithPrefetcher(c.Name(), 0).
			Build()

		c.SendForward(pf)
	}

	c.table.Update(req.IP, entry, tagstore.Bimodal)

	return c.cfg.Latency
}

// ProcessReturn self-destructs this component's own spawned prefetches.
func (c *Stride) ProcessReturn(req *request.Request) int {
	if req.IniType == request.InitiatorComponent && req.IniRef == component.Handle(c) {
		req.Destroy = true
	}

	return 0
}
