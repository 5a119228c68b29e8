package cache

import (
	"math/bits"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

// arcList is an ordered, MRU-at-the-end list of block tags. ARC's four
// per-set lists (T1, T2 resident; B1, B2 ghost) are all this same shape,
// so eviction/promotion/removal share one small set of slice operations
// rather than four bespoke structures.
type arcList []uint64

func (l arcList) indexOf(tag uint64) int {
	for i, t := range l {
		if t == tag {
			return i
		}
	}

	return -1
}

func (l arcList) contains(tag uint64) bool { return l.indexOf(tag) >= 0 }

func (l *arcList) remove(tag uint64) bool {
	idx := l.indexOf(tag)
	if idx < 0 {
		return false
	}

	*l = append((*l)[:idx], (*l)[idx+1:]...)

	return true
}

func (l *arcList) pushMRU(tag uint64) {
	l.remove(tag)
	*l = append(*l, tag)
}

func (l *arcList) popLRU() (uint64, bool) {
	if len(*l) == 0 {
		return 0, false
	}

	tag := (*l)[0]
	*l = (*l)[1:]

	return tag, true
}

// arcSet holds one cache set's four ARC lists, the adaptive target size p
// for T1, and the data actually resident for tags in T1/T2 (B1/B2 are
// tag-only ghost entries by construction).
type arcSet struct {
	t1, t2, b1, b2 arcList
	p              int
	data           map[uint64]Line
}

func newArcSet() *arcSet {
	return &arcSet{data: make(map[uint64]Line)}
}

// ARC is the per-set Adaptive Replacement Cache (spec section 4.6,
// CmpARC). It bypasses cache.Base's tagstore-driven install path entirely
// since ARC's ghost lists and adaptive target size have no equivalent in
// the Table/Policy seam, instead implementing the component contract
// directly on top of component.Base.
type ARC struct {
	component.Base

	blockBytes int
	ways       int
	offsetBits uint
	setBits    uint
	numSets    uint64
	sets       map[uint64]*arcSet

	tagStoreLat  int
	dataStoreLat int
}

// NewARC constructs an ARC cache with the given geometry (SizeKB/
// BlockBytes/Associativity from Config; the tagstore-specific fields of
// Config are unused).
func NewARC(name string, router component.Router, cfg Config) *ARC {
	numSets := (cfg.SizeKB * 1024) / (cfg.BlockBytes * cfg.Associativity)

	c := &ARC{
		blockBytes:   cfg.BlockBytes,
		ways:         cfg.Associativity,
		offsetBits:   uint(bits.Len(uint(cfg.BlockBytes - 1))),
		setBits:      uint(bits.Len(uint(numSets - 1))),
		numSets:      uint64(numSets),
		sets:         make(map[uint64]*arcSet),
		tagStoreLat:  cfg.TagStoreLat,
		dataStoreLat: cfg.DataStoreLat,
	}
	c.Base.Init(name, router, c)

	return c
}

func (c *ARC) split(addr uint64) (set uint64, tag uint64) {
	blockAddr := addr >> c.offsetBits
	mask := uint64(1)<<c.setBits - 1

	return blockAddr & mask, blockAddr >> c.setBits
}

func (c *ARC) combine(set, tag uint64) uint64 {
	return (tag<<c.setBits | set) << c.offsetBits
}

func (c *ARC) setFor(addr uint64) (*arcSet, uint64) {
	set, _ := c.split(addr)

	s, ok := c.sets[set]
	if !ok {
		s = newArcSet()
		c.sets[set] = s
	}

	return s, set
}

func (c *ARC) blockAddr(req *request.Request) uint64 {
	return request.BlockAddr(req.PAddr, uint32(c.blockBytes))
}

// ProcessRequest implements ARC's forward direction.
func (c *ARC) ProcessRequest(req *request.Request) int {
	if req.Type == request.Writeback {
		return c.processWriteback(req)
	}

	addr := c.blockAddr(req)
	s, set := c.setFor(addr)
	_, tag := c.split(addr)

	if _, ok := s.data[tag]; ok && (s.t1.contains(tag) || s.t2.contains(tag)) {
		s.t1.remove(tag)
		s.t2.pushMRU(tag)
		req.Serviced = true

		return c.tagStoreLat + c.dataStoreLat
	}

	c.onMiss(req, s, set, tag)

	return c.tagStoreLat
}

func (c *ARC) processWriteback(req *request.Request) int {
	addr := c.blockAddr(req)
	s, _ := c.setFor(addr)
	_, tag := c.split(addr)

	if line, ok := s.data[tag]; ok {
		line.Dirty = true
		s.data[tag] = line
		req.Serviced = true

		return c.tagStoreLat
	}

	s.t1.pushMRU(tag)
	s.data[tag] = Line{Dirty: true}
	req.Serviced = true

	return c.tagStoreLat
}

// onMiss runs ARC's ghost-list adaptation and REPLACE rule, then leaves
// the request unserviced so it continues forward toward the next stage
// (an MSHR or DRAM controller) exactly like cache.Base's miss path.
func (c *ARC) onMiss(req *request.Request, s *arcSet, set uint64, tag uint64) {
	switch {
	case s.b1.contains(tag):
		delta := 1
		if len(s.b1) > 0 {
			delta = maxInt(len(s.b2)/len(s.b1), 1)
		}

		s.p = minInt(s.p+delta, c.ways)
		c.replace(s, set, tag, false, req)
		s.b1.remove(tag)
		s.t2.pushMRU(tag)

	case s.b2.contains(tag):
		delta := 1
		if len(s.b2) > 0 {
			delta = maxInt(len(s.b1)/len(s.b2), 1)
		}

		s.p = maxInt(s.p-delta, 0)
		c.replace(s, set, tag, true, req)
		s.b2.remove(tag)
		s.t2.pushMRU(tag)

	default:
		l1 := len(s.t1) + len(s.b1)
		l2 := len(s.t2) + len(s.b2)

		switch {
		case l1 == c.ways:
			if len(s.t1) < c.ways {
				s.b1.popLRU()
				c.replace(s, set, tag, false, req)
			} else if victim, ok := s.t1.popLRU(); ok {
				c.spawnWriteback(s, set, victim, req)
				delete(s.data, victim)
			}
		case l1 < c.ways && l1+l2 >= c.ways:
			if l1+l2 == 2*c.ways {
				s.b2.popLRU()
			}

			c.replace(s, set, tag, false, req)
		}

		s.t1.pushMRU(tag)
	}

	s.data[tag] = Line{}
}

// replace implements ARC's REPLACE(p, inB2) rule: evict from T1 to B1 if
// T1 exceeds its target p (or T1 is exactly at p and this miss hit B2,
// which forces a T1 eviction per the standard rule), otherwise evict
// from T2 to B2.
func (c *ARC) replace(s *arcSet, set uint64, missTag uint64, inB2 bool, req *request.Request) {
	t1Len := len(s.t1)
	evictFromT1 := t1Len > 0 && (t1Len > s.p || (t1Len == s.p && inB2))

	if evictFromT1 {
		if victim, ok := s.t1.popLRU(); ok {
			c.spawnWriteback(s, set, victim, req)
			delete(s.data, victim)
			s.b1.pushMRU(victim)
		}

		return
	}

	if victim, ok := s.t2.popLRU(); ok {
		c.spawnWriteback(s, set, victim, req)
		delete(s.data, victim)
		s.b2.pushMRU(victim)
	}
}

func (c *ARC) spawnWriteback(s *arcSet, set uint64, victimTag uint64, req *request.Request) {
	line, ok := s.data[victimTag]
	if !ok || !line.Dirty {
		return
	}

	victimAddr := c.combine(set, victimTag)

	wb := request.NewBuilder(req.CPUID).
		WithType(request.Writeback).
		WithAddresses(0, 0, victimAddr).
		WithSize(uint32(c.blockBytes)).
		WithCmpID(req.CmpID).
		WithCurrentCycle(c.LocalCycle()).
		Build()
	wb.IniType = request.InitiatorComponent
	wb.IniRef = component.Handle(c)

	c.SendForward(wb)
}

// ProcessReturn installs the fetched block's data once it comes back.
func (c *ARC) ProcessReturn(req *request.Request) int {
	if req.IniType == request.InitiatorComponent && req.IniRef == component.Handle(c) {
		req.Destroy = true
		return 0
	}

	addr := c.blockAddr(req)
	s, _ := c.setFor(addr)
	_, tag := c.split(addr)
	s.data[tag] = Line{Dirty: req.DirtyReply}

	return c.dataStoreLat
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}
