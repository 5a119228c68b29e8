package prefetch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/prefetch"
	"github.com/sarchlab/cachesim/request"
)

// sink is a terminal no-op stage that just marks passing requests
// serviced, standing in for "the next cache level" in these prefetcher
// unit tests.
type sink struct {
	component.Base
	seen []*request.Request
}

func newSink(name string, router component.Router) *sink {
	s := &sink{}
	s.Init(name, router, s)
	return s
}

func (s *sink) ProcessRequest(req *request.Request) int {
	s.seen = append(s.seen, req)
	req.Serviced = true
	return 0
}
func (s *sink) ProcessReturn(_ *request.Request) int { return 0 }

type fakeRouter struct {
	stages []component.Component
}

func (f *fakeRouter) ComponentAt(_, cmpID int) component.Component { return f.stages[cmpID] }
func (f *fakeRouter) PipelineLength(_ int) int                     { return len(f.stages) }

func TestNextLineIssuesDegreeSequentialPrefetches(t *testing.T) {
	router := &fakeRouter{}
	pf := prefetch.NewNextLine("pf", router, prefetch.NextLineConfig{Degree: 2, BlockBytes: 64})
	s := newSink("sink", router)
	router.stages = []component.Component{pf, s}

	req := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x1000, 0x1000).Build()
	pf.AddRequest(req)

	require.Len(t, s.seen, 3) // the demand request plus two prefetches
}

func TestStrideTrainsThenPrefetchesAlongConstantDelta(t *testing.T) {
	router := &fakeRouter{}
	pf := prefetch.NewStride("pf", router, prefetch.StrideConfig{
		Degree: 1, BlockBytes: 64, TableSize: 16, NumTrains: 2, Distance: 1,
	})
	s := newSink("sink", router)
	router.stages = []component.Component{pf, s}

	base := uint64(0x2000)
	for i := 0; i < 3; i++ {
		addr := base + uint64(i)*64
		req := request.NewBuilder(0).WithType(request.Read).WithAddresses(0x400, addr, addr).Build()
		pf.AddRequest(req)
	}

	require.Greater(t, len(s.seen), 3, "trained stride should have injected at least one prefetch")
}

func TestStreamAllocatesAndTrainsForwardDirection(t *testing.T) {
	router := &fakeRouter{}
	pf := prefetch.NewStream("pf", router, prefetch.StreamConfig{
		NumStreams: 4, TrainDistance: 4, NumTrains: 2, Degree: 2, Distance: 4, BlockBytes: 64,
	})
	s := newSink("sink", router)
	router.stages = []component.Component{pf, s}

	base := uint64(0x10000)
	for i := 0; i < 3; i++ {
		addr := base + uint64(i)*64
		req := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, addr, addr).Build()
		pf.AddRequest(req)
	}

	require.Greater(t, len(s.seen), 3, "a trained forward stream should have injected prefetches")
}
