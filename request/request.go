package request

import "github.com/sarchlab/cachesim/sim"

// Type is a request's operation kind, numbered to match the trace file's
// integer encoding (spec section 6).
type Type int

const (
	Read Type = iota
	Write
	PartialWrite
	Writeback
	ReadForWrite
	FakeRead
	Prefetch
	Clean
	AggWb
)

func (t Type) String() string {
	switch t {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case PartialWrite:
		return "PartialWrite"
	case Writeback:
		return "Writeback"
	case ReadForWrite:
		return "ReadForWrite"
	case FakeRead:
		return "FakeRead"
	case Prefetch:
		return "Prefetch"
	case Clean:
		return "Clean"
	case AggWb:
		return "AggWb"
	default:
		return "Unknown"
	}
}

// Initiator distinguishes a request spawned directly by a core's trace
// issue from one spawned by a pipeline component (a writeback, prefetch,
// fake read, or clean request).
type Initiator int

const (
	InitiatorCpu Initiator = iota
	InitiatorComponent
)

// Handle is a weak, non-owning reference to the component that spawned a
// request, used to route a spawned request's return (self-destruct on
// arrival at its origin) without the request owning its spawner.
type Handle = sim.Named

// Request is the mutable message threaded through a core's pipeline.
// Every field is exported because every pipeline stage (component
// package) reads and mutates it directly as the request moves forward
// and back; there is no encapsulation boundary worth paying for on a
// struct this hot.
type Request struct {
	IniType Initiator
	IniRef  Handle

	CPUID int
	Type  Type

	IP, VAddr, PAddr uint64
	Size             uint32
	ICount           uint64

	IssueCycle   sim.Cycle
	CurrentCycle sim.Cycle

	CmpID int

	Serviced bool
	Stalling bool
	Destroy  bool
	Finished bool

	DirtyReply bool

	PrefetcherID string
	DPrefetched  bool
	DPrefID      uint64

	DRAMChannelID int
	DRAMRankID    int
	DRAMBankID    int
	DRAMRowID     uint64
	DRAMColumnID  uint64

	seq uint64
}

// Seq is the monotonically increasing insertion sequence number assigned
// by Builder.Build, used as the deterministic FIFO tiebreak in a
// component's currentCycle-ordered priority queue.
func (r *Request) Seq() uint64 {
	return r.seq
}
