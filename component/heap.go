package component

import (
	"container/heap"

	"github.com/sarchlab/cachesim/request"
)

// requestHeap is a container/heap priority queue of in-flight requests,
// ordered by CurrentCycle ascending and, on ties, by insertion sequence
// number, the deterministic FIFO tiebreak spec section 3 requires for
// reproducible runs.
type requestHeap []*request.Request

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].CurrentCycle != h[j].CurrentCycle {
		return h[i].CurrentCycle < h[j].CurrentCycle
	}

	return h[i].Seq() < h[j].Seq()
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) {
	*h = append(*h, x.(*request.Request))
}

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return item
}

// All returns the heap's underlying slice, unordered beyond the heap
// invariant, for callers (the MSHR's stalling-aware scan) that need to
// inspect every queued request rather than only the heap root.
func (h *requestHeap) All() []*request.Request {
	return *h
}

// peek returns the heap root without removing it.
func (h *requestHeap) peek() (*request.Request, bool) {
	if h.Len() == 0 {
		return nil, false
	}

	return (*h)[0], true
}

// remove finds req by identity and removes it from the heap, wherever it
// sits, returning whether it was found.
func (h *requestHeap) remove(req *request.Request) bool {
	for i, r := range *h {
		if r == req {
			heap.Remove(h, i)
			return true
		}
	}

	return false
}

func (h *requestHeap) push(req *request.Request) {
	heap.Push(h, req)
}
