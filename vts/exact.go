package vts

import "github.com/sarchlab/cachesim/tagstore"

// exact is a capacity-bounded list of victim addresses backing both the
// Exact and FIFO modes. By default (noClear false) an insert that would
// overflow capacity clears the whole list first, matching the mass-clear
// behavior the spec calls out as Exact's default constructor option;
// noClear switches to evicting the single oldest entry instead, which is
// FIFO mode's fixed behavior. ideal additionally removes an address from
// the list the moment Test finds it, so a victim is only ever reported
// once.
type exact struct {
	table   *tagstore.Table[uint64, struct{}]
	noClear bool
	ideal   bool
}

func newExact(capacity int, noClear, ideal bool) *exact {
	return &exact{
		table:   tagstore.New[uint64, struct{}](capacity, tagstore.NewFIFO()),
		noClear: noClear,
		ideal:   ideal,
	}
}

func (e *exact) Insert(addr uint64) {
	if e.table.Peek(addr).Valid {
		return
	}

	if e.table.Len() >= e.table.Capacity() {
		if e.noClear {
			e.table.ForceEvict()
		} else {
			e.Clear()
		}
	}

	e.table.Insert(addr, struct{}{}, tagstore.Bimodal)
}

func (e *exact) Test(addr uint64) bool {
	if !e.table.Peek(addr).Valid {
		return false
	}

	if e.ideal {
		e.table.Invalidate(addr)
	}

	return true
}

func (e *exact) Clear() {
	for e.table.Len() > 0 {
		e.table.ForceEvict()
	}
}
