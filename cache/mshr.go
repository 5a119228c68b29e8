package cache

import (
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim/stats"
)

// mshrEntry tracks one outstanding miss: the derived request sent
// forward to fetch the block, and every original requester waiting on
// it.
type mshrEntry struct {
	blockAddr uint64
	forward   *request.Request
	waiters   []*request.Request
}

// MSHR is the miss-status-holding-register stage (spec section 4.7): it
// coalesces requests that miss on the same block, caps the number of
// concurrent outstanding misses, and queues anything beyond that cap.
type MSHR struct {
	component.Base

	blockBytes uint32
	capacity   int

	missed      map[uint64]*mshrEntry
	outstanding map[uint64]*request.Request
	waitQ       []*request.Request

	coalescedCounter stats.Handle
	overflowCounter  stats.Handle
}

// NewMSHR constructs an MSHR stage with room for capacity concurrent
// outstanding misses.
func NewMSHR(name string, router component.Router, capacity int, blockBytes uint32) *MSHR {
	m := &MSHR{
		capacity:    capacity,
		blockBytes:  blockBytes,
		missed:      make(map[uint64]*mshrEntry),
		outstanding: make(map[uint64]*request.Request),
	}
	m.Init(name, router, m)
	m.SetEarliestRequestOverride(m)

	m.coalescedCounter = m.Stats.Register("coalesced", "requests merged onto an outstanding miss")
	m.overflowCounter = m.Stats.Register("overflow", "requests queued past capacity")

	return m
}

func (m *MSHR) blockOf(req *request.Request) uint64 {
	return request.BlockAddr(req.PAddr, m.blockBytes)
}

// EarliestRequest skips stalling heads: a request coalesced onto an
// already-outstanding miss cannot make progress until that miss returns,
// so the driver's auto-advance loop must not get stuck waiting on it.
func (m *MSHR) EarliestRequest() (*request.Request, bool) {
	best := (*request.Request)(nil)

	for _, req := range m.allQueued() {
		if req.Stalling {
			continue
		}

		if best == nil || req.CurrentCycle < best.CurrentCycle ||
			(req.CurrentCycle == best.CurrentCycle && req.Seq() < best.Seq()) {
			best = req
		}
	}

	if best == nil {
		return nil, false
	}

	return best, true
}

func (m *MSHR) allQueued() []*request.Request {
	return m.Base.EarliestRequestCandidates()
}

// ProcessRequest implements the MSHR forward rules. A Write is fully
// handled here (fire-and-forget, whether it joins an outstanding miss or
// allocates a new one) and flips Serviced=true so routing carries it
// backward immediately; the derived miss a new allocation spawns is sent
// forward on its own. A read-class request that must wait for a miss is
// marked Stalling instead, which the framework leaves behind until
// ProcessReturn releases it.
func (m *MSHR) ProcessRequest(req *request.Request) int {
	if req.Type == request.Writeback {
		return 0
	}

	block := m.blockOf(req)

	if entry, ok := m.missed[block]; ok {
		if req.Type == request.Write {
			req.Serviced = true
			return 0
		}

		if req.Type == request.Read && entry.forward.Type == request.ReadForWrite {
			entry.forward.Type = request.Read
		}

		req.Stalling = true
		entry.waiters = append(entry.waiters, req)
		m.Stats.Inc(m.coalescedCounter)

		return 0
	}

	if len(m.missed) < m.capacity {
		forwardType := req.Type
		if req.Type == request.Write {
			forwardType = request.ReadForWrite
		}

		forward := request.DerivedFrom(req, m, forwardType).Build()
		forward.CmpID = req.CmpID

		waiters := []*request.Request{}
		if req.Type != request.Write {
			req.Stalling = true
			waiters = append(waiters, req)
		} else {
			req.Serviced = true
		}

		m.missed[block] = &mshrEntry{
			blockAddr: block,
			forward:   forward,
			waiters:   waiters,
		}
		m.outstanding[block] = forward

		m.SendForward(forward)

		return 0
	}

	req.Stalling = true
	m.waitQ = append(m.waitQ, req)
	m.Stats.Inc(m.overflowCounter)

	return 0
}

// ProcessReturn implements the MSHR return rules: wake every waiter on
// the completed block, requeue one waiting request if the wait queue has
// room now, and destroy the derived forward request.
func (m *MSHR) ProcessReturn(req *request.Request) int {
	block := m.blockOf(req)

	entry, ok := m.missed[block]
	if !ok {
		return 0
	}

	for _, w := range entry.waiters {
		w.Stalling = false
		w.Serviced = true
		w.CurrentCycle = req.CurrentCycle
		w.DirtyReply = req.DirtyReply
		m.SimpleAddRequest(w)
	}

	delete(m.missed, block)
	delete(m.outstanding, block)

	if len(m.waitQ) > 0 {
		next := m.waitQ[0]
		m.waitQ = m.waitQ[1:]
		next.Stalling = false
		m.SimpleAddRequest(next)
	}

	req.Destroy = true

	return 0
}
