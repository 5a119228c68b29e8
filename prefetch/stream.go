package prefetch

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

// StreamDirection is a stream entry's observed access direction (spec
// section 4.8).
type StreamDirection int

const (
	DirNone StreamDirection = iota
	DirForward
	DirBackward
)

// StreamConfig configures the stream prefetcher.
type StreamConfig struct {
	NumStreams    int  `param:"numStreams"`
	TrainDistance int  `param:"trainDistance"` // blocks either side of allocAddr that count as training evidence
	NumTrains     int  `param:"numTrains"`     // training hits required before a stream is trained
	Degree        int  `param:"degree"`        // prefetches issued per trained hit
	Distance      int  `param:"distance"`      // blocks ahead of the stream head to prefetch up to
	BlockBytes    int  `param:"blockBytes"`
	EmitFakeReads bool `param:"emitFakeReads"`
	Latency       int  `param:"latency"`
}

// streamEntry tracks one allocated stream (spec section 4.8): the
// address that allocated it, its inferred direction, training progress,
// and (once trained) the head/tail pointers prefetches advance from.
type streamEntry struct {
	allocAddr  uint64
	ip         uint64
	sp, ep     uint64
	direction  StreamDirection
	trainHits  int
	trained    bool
	lastDemand uint64
}

// Stream is the allocator-miss-triggered stream prefetcher (spec section
// 4.8, CmpStreamPrefetcher). It keeps a small fixed set of streams, each
// starting in a training phase that accumulates directional evidence
// from nearby demand accesses before a stream may issue prefetches; a
// trained stream's continued hits advance its head and top up its
// prefetch distance, and evicting a trained stream drains its remaining
// promised range as FakeReads so downstream reuse predictors are not left
// thinking a promised block will still arrive.
type Stream struct {
	component.Base

	cfg     StreamConfig
	entries []*streamEntry
	next    int // round-robin allocation pointer (FIFO victim among streams)
}

// NewStream constructs a stream prefetcher with cfg.NumStreams entries.
func NewStream(name string, router component.Router, cfg StreamConfig) *Stream {
	c := &Stream{cfg: cfg}
	c.Base.Init(name, router, c)

	return c
}

func (c *Stream) blockAddr(req *request.Request) uint64 {
	return request.BlockAddr(req.PAddr, uint32(c.cfg.BlockBytes))
}

func (c *Stream) eligible(req *request.Request) bool {
	switch req.Type {
	case request.Writeback, request.Prefetch, request.FakeRead:
		return false
	default:
		return true
	}
}

// ProcessRequest snoops a passing demand request: it feeds an in-training
// or already-trained stream if the address falls in that stream's
// window, otherwise allocates a fresh stream entry for it, exactly as
// spec section 4.8 describes ("per-allocator-miss stream entries").
func (c *Stream) ProcessRequest(req *request.Request) int {
	if !c.eligible(req) {
		return 0
	}

	addr := c.blockAddr(req)

	if e := c.findWindow(addr); e != nil {
		if e.trained {
			c.onTrainedHit(e, addr, req)
		} else {
			c.onTrainingHit(e, addr, req)
		}

		return c.cfg.Latency
	}

	c.allocate(addr, req)

	return c.cfg.Latency
}

// findWindow returns the stream (trained or training) whose live range
// covers addr, or nil.
func (c *Stream) findWindow(addr uint64) *streamEntry {
	for _, e := range c.entries {
		if e.trained {
			if c.inTrainedRange(e, addr) {
				return e
			}

			continue
		}

		lo := e.allocAddr - uint64(c.cfg.TrainDistance)*uint64(c.cfg.BlockBytes)
		hi := e.allocAddr + uint64(c.cfg.TrainDistance)*uint64(c.cfg.BlockBytes)

		if addr >= lo && addr <= hi {
			return e
		}
	}

	return nil
}

func (c *Stream) inTrainedRange(e *streamEntry, addr uint64) bool {
	block := uint64(c.cfg.BlockBytes)
	distance := uint64(c.cfg.Distance) * block

	switch e.direction {
	case DirForward:
		return addr >= e.sp-block && addr <= e.ep+distance
	case DirBackward:
		return addr <= e.sp+block && addr >= e.ep-distance
	default:
		return false
	}
}

// onTrainingHit accumulates directional evidence: a demand address above
// allocAddr votes forward, below votes backward. NumTrains consistent
// votes graduate the stream to trained, seeding sp/ep at the training
// head so its first prefetches start just ahead of where training ended.
func (c *Stream) onTrainingHit(e *streamEntry, addr uint64, req *request.Request) {
	dir := DirForward
	if addr < e.allocAddr {
		dir = DirBackward
	}

	if e.direction == DirNone {
		e.direction = dir
	}

	if e.direction != dir {
		return // conflicting evidence: stay in training, do not count it
	}

	e.trainHits++
	e.lastDemand = addr

	if e.trainHits < c.cfg.NumTrains {
		return
	}

	e.trained = true
	e.sp = addr
	e.ep = addr

	c.emitPrefetches(e, req)
}

// onTrainedHit advances a trained stream's head to the demand address
// (the common case: the stream is running ahead of the core, and demand
// catches up to where prefetches already reached) and tops the range
// back up to Distance blocks ahead.
func (c *Stream) onTrainedHit(e *streamEntry, addr uint64, req *request.Request) {
	e.lastDemand = addr

	block := uint64(c.cfg.BlockBytes)
	if e.direction == DirForward && addr > e.sp {
		e.sp = addr
	} else if e.direction == DirBackward && addr < e.sp {
		e.sp = addr
	}

	_ = block

	c.emitPrefetches(e, req)
}

// emitPrefetches issues up to Degree prefetches from the stream's current
// tail out to Distance blocks ahead of its head, extending ep as it goes.
func (c *Stream) emitPrefetches(e *streamEntry, req *request.Request) {
	block := uint64(c.cfg.BlockBytes)
	limit := e.sp + uint64(c.cfg.Distance)*block

	if e.direction == DirBackward {
		limit = e.sp - uint64(c.cfg.Distance)*block
	}

	issued := 0
	for issued < c.cfg.Degree {
		var next uint64
		if e.direction == DirForward {
			next = e.ep + block
			if next > limit {
				break
			}
		} else {
			next = e.ep - block
			if next < limit {
				break
			}
		}

		e.ep = next
		c.issuePrefetch(e, next, req)
		issued++
	}
}

func (c *Stream) issuePrefetch(e *streamEntry, addr uint64, req *request.Request) {
	pf := request.NewBuilder(req.CPUID).
		WithType(request.Prefetch).
		WithIniRef(component.Handle(c)).
		WithAddresses(e.ip, addr, addr).
		WithSize(uint32(c.cfg.BlockBytes)).
		WithCmpID(req.CmpID).
		WithCurrentCycle(req.CurrentCycle).
		WithPrefetcher(c.Name(), 0).
		Build()

	c.SendForward(pf)
}

// allocate replaces the round-robin victim stream with a fresh
// training-phase entry rooted at addr; a still-trained victim drains its
// unconsumed [lastDemand, sp] promise as FakeReads first (spec section
// 4.8's "on eviction of a trained stream, drain its outstanding range as
// FakeReads"), so a downstream reuse predictor is not left expecting a
// demand that will never come from the stream it just displaced.
func (c *Stream) allocate(addr uint64, req *request.Request) {
	if len(c.entries) < c.cfg.NumStreams {
		c.entries = append(c.entries, &streamEntry{allocAddr: addr, ip: req.IP})
		return
	}

	victim := c.entries[c.next]
	if victim.trained && c.cfg.EmitFakeReads {
		c.drainFakeReads(victim, req)
	}

	c.entries[c.next] = &streamEntry{allocAddr: addr, ip: req.IP}
	c.next = (c.next + 1) % len(c.entries)
}

func (c *Stream) drainFakeReads(e *streamEntry, req *request.Request) {
	block := uint64(c.cfg.BlockBytes)

	if e.direction == DirForward {
		for a := e.lastDemand + block; a <= e.sp; a += block {
			c.issueFakeRead(a, req)
		}

		return
	}

	for a := e.lastDemand - block; a >= e.sp && a <= e.lastDemand; a -= block {
		c.issueFakeRead(a, req)
	}
}

func (c *Stream) issueFakeRead(addr uint64, req *request.Request) {
	fr := request.NewBuilder(req.CPUID).
		WithType(request.FakeRead).
		WithIniRef(component.Handle(c)).
		WithAddresses(req.IP, addr, addr).
		WithSize(uint32(c.cfg.BlockBytes)).
		WithCmpID(req.CmpID).
		WithCurrentCycle(req.CurrentCycle).
		Build()

	c.SendForward(fr)
}

// ProcessReturn self-destructs any Prefetch or FakeRead this component
// spawned once it returns; a demand request passing back through is left
// untouched.
func (c *Stream) ProcessReturn(req *request.Request) int {
	if req.IniType == request.InitiatorComponent && req.IniRef == component.Handle(c) {
		req.Destroy = true
	}

	return 0
}
