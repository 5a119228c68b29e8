package tagstore

import "github.com/sarchlab/cachesim/primitives"

// Reuse is a reuse-counter policy: each slot carries a saturating counter
// that a sweep hand decrements on its way to a zero-valued victim, and
// pval sets the counter's initial value on insertion (High starts furthest
// from eviction, Low starts already at zero).
type Reuse struct {
	hand     primitives.Cyclic
	counters []primitives.Saturating
	max      int
}

// NewReuse creates a Reuse policy whose counters saturate at max.
func NewReuse(max int) *Reuse {
	return &Reuse{max: max}
}

func (p *Reuse) Init(capacity int) {
	p.hand = primitives.NewCyclic(capacity)
	p.counters = make([]primitives.Saturating, capacity)

	for i := range p.counters {
		p.counters[i] = primitives.NewSaturating(0, p.max)
	}
}

func (p *Reuse) initValue(pval PVal) int {
	switch pval {
	case High:
		return p.max
	case Bimodal:
		return p.max / 2
	default:
		return 0
	}
}

// OnInsert sets index's counter from pval.
func (p *Reuse) OnInsert(index int, pval PVal) {
	p.counters[index].Set(p.initValue(pval))
}

// OnAccess promotes index's counter by one on a hit.
func (p *Reuse) OnAccess(index int, _ PVal) {
	p.counters[index].Increment()
}

// OnInvalidate resets index's counter to zero.
func (p *Reuse) OnInvalidate(index int) {
	p.counters[index].Set(0)
}

// VictimIndex sweeps forward, decrementing counters, until it finds one
// already at zero.
func (p *Reuse) VictimIndex() int {
	size := p.hand.Size()

	for round := 0; round <= p.max; round++ {
		for i := 0; i < size; i++ {
			idx := p.hand.Hand()
			if p.counters[idx].Value() == 0 {
				p.hand.Add(1)
				return idx
			}

			p.counters[idx].Decrement()
			p.hand.Add(1)
		}
	}

	return p.hand.Hand()
}
