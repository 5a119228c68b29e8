package tagstore

// FIFO orders slots strictly by install time: unlike LRU it never reorders
// on a hit, only on insertion, reusing the same intrusive-list shape.
type FIFO struct {
	prev, next []int
	head, tail int
}

// NewFIFO creates a FIFO policy.
func NewFIFO() *FIFO {
	return &FIFO{}
}

func (p *FIFO) Init(capacity int) {
	p.prev = make([]int, capacity)
	p.next = make([]int, capacity)
	p.head = lruNil
	p.tail = lruNil
}

func (p *FIFO) unlink(index int) {
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

// OnInsert appends index to the back of the queue.
func (p *FIFO) OnInsert(index int, _ PVal) {
	p.prev[index] = p.tail
	p.next[index] = lruNil

	if p.tail != lruNil {
		p.next[p.tail] = index
	} else {
		p.head = index
	}

	p.tail = index
}

// OnAccess does nothing: FIFO order is unaffected by hits.
func (p *FIFO) OnAccess(int, PVal) {}

// OnInvalidate removes index from the queue.
func (p *FIFO) OnInvalidate(index int) {
	p.unlink(index)
}

// VictimIndex returns the oldest-installed slot.
func (p *FIFO) VictimIndex() int {
	return p.head
}
