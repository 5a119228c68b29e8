package tagstore

import "github.com/sarchlab/cachesim/primitives"

// Generation is a sweep-hand policy with a per-slot generation counter and
// referenced bit: a slot that was referenced since last visited gets its
// generation bumped and its referenced bit cleared as the hand passes; an
// unreferenced slot is aged down instead. The victim is the first slot the
// hand finds with generation zero and referenced clear. Insertion seeds
// the generation counter from pval, letting callers bias how many sweeps a
// fresh block survives.
type Generation struct {
	hand primitives.Cyclic
	gen  []primitives.Saturating
	ref  []bool
	max  int
}

// NewGeneration creates a Generation policy whose counters saturate at max.
func NewGeneration(max int) *Generation {
	return &Generation{max: max}
}

func (p *Generation) Init(capacity int) {
	p.hand = primitives.NewCyclic(capacity)
	p.gen = make([]primitives.Saturating, capacity)
	p.ref = make([]bool, capacity)

	for i := range p.gen {
		p.gen[i] = primitives.NewSaturating(0, p.max)
	}
}

func (p *Generation) initValue(pval PVal) int {
	switch pval {
	case High:
		return p.max
	case Bimodal:
		return p.max / 2
	default:
		return 0
	}
}

// OnInsert seeds index's generation from pval and clears its referenced
// bit.
func (p *Generation) OnInsert(index int, pval PVal) {
	p.gen[index].Set(p.initValue(pval))
	p.ref[index] = false
}

// OnAccess marks index referenced.
func (p *Generation) OnAccess(index int, _ PVal) {
	p.ref[index] = true
}

// OnInvalidate resets index's generation and referenced bit.
func (p *Generation) OnInvalidate(index int) {
	p.gen[index].Set(0)
	p.ref[index] = false
}

// VictimIndex sweeps forward: a referenced slot is bumped a generation and
// un-marked; an unreferenced one is aged down. The victim is the first
// slot found with generation zero and referenced clear.
func (p *Generation) VictimIndex() int {
	size := p.hand.Size()

	for i := 0; i <= (p.max+1)*size; i++ {
		idx := p.hand.Hand()

		if p.gen[idx].Value() == 0 && !p.ref[idx] {
			p.hand.Add(1)
			return idx
		}

		if p.ref[idx] {
			p.gen[idx].Increment()
			p.ref[idx] = false
		} else {
			p.gen[idx].Decrement()
		}

		p.hand.Add(1)
	}

	return p.hand.Hand()
}
