package request

import (
	"sync/atomic"

	"github.com/sarchlab/cachesim/sim"
)

var nextSeq uint64

// Builder constructs a Request through a chain of With* calls terminated
// by Build, the same fluent-builder shape used throughout this module's
// pipeline for constructing outbound messages.
type Builder struct {
	req Request
}

// NewBuilder starts a Builder for a Read-type request on cpuID; override
// the type and fields with the With* methods below.
func NewBuilder(cpuID int) Builder {
	return Builder{req: Request{CPUID: cpuID, Type: Read}}
}

func (b Builder) WithType(t Type) Builder {
	b.req.Type = t
	return b
}

func (b Builder) WithIniType(it Initiator) Builder {
	b.req.IniType = it
	return b
}

func (b Builder) WithIniRef(h Handle) Builder {
	b.req.IniRef = h
	b.req.IniType = InitiatorComponent
	return b
}

func (b Builder) WithAddresses(ip, vaddr, paddr uint64) Builder {
	b.req.IP = ip
	b.req.VAddr = vaddr
	b.req.PAddr = paddr
	return b
}

func (b Builder) WithSize(size uint32) Builder {
	b.req.Size = size
	return b
}

func (b Builder) WithICount(icount uint64) Builder {
	b.req.ICount = icount
	return b
}

func (b Builder) WithIssueCycle(c sim.Cycle) Builder {
	b.req.IssueCycle = c
	b.req.CurrentCycle = c
	return b
}

func (b Builder) WithCurrentCycle(c sim.Cycle) Builder {
	b.req.CurrentCycle = c
	return b
}

func (b Builder) WithCmpID(id int) Builder {
	b.req.CmpID = id
	return b
}

func (b Builder) WithPrefetcher(id string, dPrefID uint64) Builder {
	b.req.PrefetcherID = id
	b.req.DPrefetched = true
	b.req.DPrefID = dPrefID
	return b
}

// Build finalizes the request, stamping it with a fresh monotonic
// sequence number for deterministic priority-queue tiebreaking.
func (b Builder) Build() *Request {
	r := b.req
	r.seq = atomic.AddUint64(&nextSeq, 1)

	return &r
}

// FromReference starts a Builder seeded from a traced Reference, the
// common case of a core issuing a new demand request.
func FromReference(cpuID int, ref Reference) Builder {
	t := Read
	if ref.Kind == KindWrite {
		t = Write
	}

	return NewBuilder(cpuID).
		WithType(t).
		WithAddresses(ref.IP, ref.VAddr, ref.PAddr).
		WithSize(ref.Size).
		WithICount(ref.ICount)
}

// DerivedFrom starts a Builder for a request spawned by component origin
// (a writeback, prefetch, fake read, or clean request) on behalf of the
// same core and cycle as parent.
func DerivedFrom(parent *Request, origin Handle, t Type) Builder {
	return NewBuilder(parent.CPUID).
		WithType(t).
		WithIniRef(origin).
		WithAddresses(parent.IP, parent.VAddr, parent.PAddr).
		WithSize(parent.Size).
		WithCurrentCycle(parent.CurrentCycle)
}
