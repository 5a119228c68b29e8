package tagstore

// DIP wraps the same intrusive LRU list as LRU, but varies where a fresh
// block is inserted according to pval: High and a normal Bimodal insertion
// go to the MRU end; Low always goes to the LRU end (instant victim); a
// small fraction of Bimodal insertions (the bimodal-insertion-policy
// "BIP" trick, one in bipPeriod) also go to the LRU end, so most
// streaming/thrashing references never displace the working set that the
// plain-LRU insertions protect.
type DIP struct {
	prev, next []int
	head, tail int

	bipPeriod  int
	bipCounter int
}

// DefaultBIPPeriod is the standard DIP bimodal-insertion throttle: roughly
// one in 64 bimodal insertions goes to the LRU end.
const DefaultBIPPeriod = 64

// NewDIP creates a DIP policy with the standard BIP throttle period.
func NewDIP(bipPeriod int) *DIP {
	return &DIP{bipPeriod: bipPeriod}
}

func (p *DIP) Init(capacity int) {
	p.prev = make([]int, capacity)
	p.next = make([]int, capacity)
	p.head = lruNil
	p.tail = lruNil
}

func (p *DIP) unlink(index int) {
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

func (p *DIP) pushMRU(index int) {
	p.prev[index] = p.tail
	p.next[index] = lruNil

	if p.tail != lruNil {
		p.next[p.tail] = index
	} else {
		p.head = index
	}

	p.tail = index
}

func (p *DIP) pushLRU(index int) {
	p.next[index] = p.head
	p.prev[index] = lruNil

	if p.head != lruNil {
		p.prev[p.head] = index
	} else {
		p.tail = index
	}

	p.head = index
}

// OnInsert places index at the MRU end (High, normal Bimodal) or the LRU
// end (Low, or the throttled fraction of Bimodal insertions).
func (p *DIP) OnInsert(index int, pval PVal) {
	switch pval {
	case Low:
		p.pushLRU(index)
	case Bimodal:
		p.bipCounter++
		if p.bipCounter%p.bipPeriod == 0 {
			p.pushLRU(index)
			return
		}

		p.pushMRU(index)
	default:
		p.pushMRU(index)
	}
}

// OnAccess moves index to the MRU end.
func (p *DIP) OnAccess(index int, _ PVal) {
	p.unlink(index)
	p.pushMRU(index)
}

// OnInvalidate removes index from the list.
func (p *DIP) OnInvalidate(index int) {
	p.unlink(index)
}

// VictimIndex returns the LRU end of the list.
func (p *DIP) VictimIndex() int {
	return p.head
}
