package tagstore

// LRU is a strict least-recently-used policy built on an intrusive
// doubly-linked list threaded through per-slot prev/next arrays, with the
// head as the LRU end and the tail as the MRU end: the same arena-plus-
// slot-index shape used for the generic table itself, rather than a
// pointer-based list.
type LRU struct {
	prev, next []int
	head, tail int
}

const lruNil = -1

// NewLRU creates an LRU policy.
func NewLRU() *LRU {
	return &LRU{}
}

func (p *LRU) Init(capacity int) {
	p.prev = make([]int, capacity)
	p.next = make([]int, capacity)
	p.head = lruNil
	p.tail = lruNil
}

func (p *LRU) unlink(index int) {
	if p.prev[index] != lruNil {
		p.next[p.prev[index]] = p.next[index]
	} else {
		p.head = p.next[index]
	}

	if p.next[index] != lruNil {
		p.prev[p.next[index]] = p.prev[index]
	} else {
		p.tail = p.prev[index]
	}
}

func (p *LRU) pushMRU(index int) {
	p.prev[index] = p.tail
	p.next[index] = lruNil

	if p.tail != lruNil {
		p.next[p.tail] = index
	} else {
		p.head = index
	}

	p.tail = index
}

// OnInsert places index at the MRU end.
func (p *LRU) OnInsert(index int, _ PVal) {
	p.pushMRU(index)
}

// OnAccess moves index to the MRU end.
func (p *LRU) OnAccess(index int, _ PVal) {
	p.unlink(index)
	p.pushMRU(index)
}

// OnInvalidate removes index from the list.
func (p *LRU) OnInvalidate(index int) {
	p.unlink(index)
}

// VictimIndex returns the LRU end of the list.
func (p *LRU) VictimIndex() int {
	return p.head
}
