package cache

import (
	"math/bits"
	"sort"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

// ucpATD is one app's auxiliary tag directory for one set: an LRU stack
// (MRU at the end, same shape as arcList) of resident tags, plus a
// per-stack-position hit counter used to build that app's marginal
// utility curve. A hit at stack position i (0 = MRU) increments every
// counter from i through ways-1, the standard UMON-style construction:
// counters[k] after enough samples approximates the hit count the app
// would see with k+1 ways of its own.
type ucpATD struct {
	stack    []uint64
	counters []int
}

func newUCPATD(ways int) *ucpATD {
	return &ucpATD{counters: make([]int, ways)}
}

func (a *ucpATD) touch(tag uint64, ways int) {
	for i, t := range a.stack {
		if t == tag {
			pos := len(a.stack) - 1 - i // recency position, 0 = MRU
			for k := pos; k < len(a.counters); k++ {
				a.counters[k]++
			}

			a.stack = append(a.stack[:i], a.stack[i+1:]...)
			a.stack = append(a.stack, tag)

			return
		}
	}

	a.stack = append(a.stack, tag)
	if len(a.stack) > ways {
		a.stack = a.stack[len(a.stack)-ways:]
	}
}

// ucpResident is one actual cache way's occupant: which app owns it
// (cpuID) alongside the ordinary Line payload.
type ucpResident struct {
	valid bool
	cpuID int
	tag   uint64
	line  Line
}

type ucpSetState struct {
	ways     []ucpResident
	atd      map[int]*ucpATD
	lru      map[int][]uint64 // per-app recency within this set, MRU last
}

func newUCPSetState(numWays int) *ucpSetState {
	return &ucpSetState{
		ways: make([]ucpResident, numWays),
		atd:  make(map[int]*ucpATD),
		lru:  make(map[int][]uint64),
	}
}

// UCP is utility-based cache partitioning (spec section 4.6, CmpUCP): each
// app's per-set ATD tracks a marginal-utility curve via UMON-style stack-
// distance sampling, and every PartitionPeriod cycles the greedy look-
// ahead algorithm picks each app's target way count from those curves.
// Installation always proceeds; when the set is full, the victim is taken
// from whichever app most exceeds its target in that set (or from the
// inserting app when none does), not necessarily this set's global LRU
// victim, enforcing the partition without a hard per-way reservation.
type UCP struct {
	component.Base

	blockBytes   int
	ways         int
	offsetBits   uint
	setBits      uint
	numSets      uint64
	sets         map[uint64]*ucpSetState
	targets         map[int]int
	partitionPeriod int
	lastPartition   int

	tagStoreLat  int
	dataStoreLat int
}

// UCPConfig adds the partition period to the shared Config.
type UCPConfig struct {
	Config
	PartitionPeriod int `param:"partitionPeriod"`
}

// NewUCP constructs a UCP cache.
func NewUCP(name string, router component.Router, cfg UCPConfig) *UCP {
	numSets := (cfg.Config.SizeKB * 1024) / (cfg.Config.BlockBytes * cfg.Config.Associativity)

	c := &UCP{
		blockBytes:      cfg.Config.BlockBytes,
		ways:            cfg.Config.Associativity,
		offsetBits:      uint(bits.Len(uint(cfg.Config.BlockBytes - 1))),
		setBits:         uint(bits.Len(uint(numSets - 1))),
		numSets:         uint64(numSets),
		sets:            make(map[uint64]*ucpSetState),
		targets:         make(map[int]int),
		partitionPeriod: cfg.PartitionPeriod,
		tagStoreLat:     cfg.Config.TagStoreLat,
		dataStoreLat:    cfg.Config.DataStoreLat,
	}
	c.Base.Init(name, router, c)

	return c
}

func (c *UCP) split(addr uint64) (set uint64, tag uint64) {
	blockAddr := addr >> c.offsetBits
	mask := uint64(1)<<c.setBits - 1

	return blockAddr & mask, blockAddr >> c.setBits
}

func (c *UCP) combine(set, tag uint64) uint64 {
	return (tag<<c.setBits | set) << c.offsetBits
}

func (c *UCP) setFor(set uint64) *ucpSetState {
	s, ok := c.sets[set]
	if !ok {
		s = newUCPSetState(c.ways)
		c.sets[set] = s
	}

	return s
}

func (c *UCP) atdFor(s *ucpSetState, cpuID int) *ucpATD {
	a, ok := s.atd[cpuID]
	if !ok {
		a = newUCPATD(c.ways)
		s.atd[cpuID] = a
	}

	return a
}

func (c *UCP) blockAddr(req *request.Request) uint64 {
	return request.BlockAddr(req.PAddr, uint32(c.blockBytes))
}

func (c *UCP) targetFor(cpuID int) int {
	if t, ok := c.targets[cpuID]; ok {
		return t
	}

	return c.ways
}

// occupancy counts how many ways in set s the given app currently holds.
func (c *UCP) occupancy(s *ucpSetState, cpuID int) int {
	n := 0
	for _, r := range s.ways {
		if r.valid && r.cpuID == cpuID {
			n++
		}
	}

	return n
}

func (c *UCP) findWay(s *ucpSetState, tag uint64) (int, bool) {
	for i, r := range s.ways {
		if r.valid && r.tag == tag {
			return i, true
		}
	}

	return 0, false
}

func (c *UCP) freeWay(s *ucpSetState) (int, bool) {
	for i, r := range s.ways {
		if !r.valid {
			return i, true
		}
	}

	return 0, false
}

// victimWay picks a way to evict, preferring a way owned by whichever app
// currently most exceeds its partition target, falling back to the
// global LRU order of the requester's own occupied ways.
func (c *UCP) victimWay(s *ucpSetState, requesterCPU int) int {
	worstApp := -1
	worstOver := 0

	byApp := map[int]int{}
	for _, r := range s.ways {
		if r.valid {
			byApp[r.cpuID]++
		}
	}

	for cpuID, occ := range byApp {
		over := occ - c.targetFor(cpuID)
		if over > worstOver {
			worstOver = over
			worstApp = cpuID
		}
	}

	owner := requesterCPU
	if worstApp >= 0 {
		owner = worstApp
	}

	lru := s.lru[owner]
	for _, tag := range lru {
		if idx, ok := c.findWay(s, tag); ok {
			return idx
		}
	}

	for i := range s.ways {
		if s.ways[i].valid {
			return i
		}
	}

	return 0
}

func (c *UCP) touchLRU(s *ucpSetState, cpuID int, tag uint64) {
	lru := s.lru[cpuID]
	for i, t := range lru {
		if t == tag {
			lru = append(lru[:i], lru[i+1:]...)
			break
		}
	}

	s.lru[cpuID] = append(lru, tag)
}

// ProcessRequest implements UCP's forward direction.
func (c *UCP) ProcessRequest(req *request.Request) int {
	if req.Type == request.Writeback {
		return c.processWriteback(req)
	}

	addr := c.blockAddr(req)
	set, tag := c.split(addr)
	s := c.setFor(set)

	c.atdFor(s, req.CPUID).touch(tag, c.ways)
	c.maybeRepartition(req)

	if _, ok := c.findWay(s, tag); ok {
		c.touchLRU(s, req.CPUID, tag)
		req.Serviced = true

		return c.tagStoreLat + c.dataStoreLat
	}

	return c.tagStoreLat
}

func (c *UCP) processWriteback(req *request.Request) int {
	addr := c.blockAddr(req)
	set, tag := c.split(addr)
	s := c.setFor(set)

	if idx, ok := c.findWay(s, tag); ok {
		s.ways[idx].line.Dirty = true
		req.Serviced = true

		return c.tagStoreLat
	}

	c.install(req, set, s, tag, Line{Dirty: true})
	req.Serviced = true

	return c.tagStoreLat
}

func (c *UCP) install(req *request.Request, set uint64, s *ucpSetState, tag uint64, line Line) {
	idx, ok := c.freeWay(s)
	if !ok {
		idx = c.victimWay(s, req.CPUID)
		victim := s.ways[idx]

		if victim.valid && victim.line.Dirty {
			c.spawnWriteback(set, victim.tag, req)
		}
	}

	s.ways[idx] = ucpResident{valid: true, cpuID: req.CPUID, tag: tag, line: line}
	c.touchLRU(s, req.CPUID, tag)
}

func (c *UCP) spawnWriteback(set uint64, victimTag uint64, req *request.Request) {
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

// ProcessReturn installs a fetched block.
func (c *UCP) ProcessReturn(req *request.Request) int {
	if req.IniType == request.InitiatorComponent && req.IniRef == component.Handle(c) {
		req.Destroy = true
		return 0
	}

	addr := c.blockAddr(req)
	set, tag := c.split(addr)
	s := c.setFor(set)
	c.install(req, set, s, tag, Line{Dirty: req.DirtyReply})

	return c.dataStoreLat
}

// maybeRepartition runs the greedy look-ahead partitioning algorithm once
// every PartitionPeriod cycles, summing each app's marginal-utility curve
// across all sampled sets.
func (c *UCP) maybeRepartition(req *request.Request) {
	now := int(c.LocalCycle())
	if c.partitionPeriod <= 0 || now-c.lastPartition < c.partitionPeriod {
		return
	}

	c.lastPartition = now

	totals := map[int][]int{}
	for _, s := range c.sets {
		for cpuID, atd := range s.atd {
			acc, ok := totals[cpuID]
			if !ok {
				acc = make([]int, c.ways)
				totals[cpuID] = acc
			}

			for i, v := range atd.counters {
				acc[i] += v
			}
		}
	}

	c.targets = greedyPartition(totals, c.ways)
}

// greedyPartition implements the classic UCP look-ahead allocator: start
// every app at zero ways, and repeatedly hand the next way to whichever
// app's marginal utility (counts[currentWays]-counts[currentWays-1], or
// counts[0] at zero ways) is currently largest, until all ways are given
// out.
func greedyPartition(totals map[int][]int, totalWays int) map[int]int {
	apps := make([]int, 0, len(totals))
	for cpuID := range totals {
		apps = append(apps, cpuID)
	}

	sort.Ints(apps)

	assigned := make(map[int]int, len(apps))
	for _, cpuID := range apps {
		assigned[cpuID] = 0
	}

	marginal := func(cpuID int) int {
		curve := totals[cpuID]
		k := assigned[cpuID]

		if k >= len(curve) {
			return 0
		}

		if k == 0 {
			return curve[0]
		}

		return curve[k] - curve[k-1]
	}

	for given := 0; given < totalWays; given++ {
		best := -1
		bestGain := -1

		for _, cpuID := range apps {
			if assigned[cpuID] >= totalWays {
				continue
			}

			gain := marginal(cpuID)
			if gain > bestGain {
				bestGain = gain
				best = cpuID
			}
		}

		if best < 0 {
			break
		}

		assigned[best]++
	}

	return assigned
}

