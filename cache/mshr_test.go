package cache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

func newMSHRWithSink(capacity int) (*fakeRouter, *cache.MSHR, *sink) {
	router := &fakeRouter{}

	m := cache.NewMSHR("CmpMSHR", router, capacity, 64)
	s := newSink("CmpDRAM", router)

	router.stages = []component.Component{m, s}

	return router, m, s
}

// TestMSHRCoalescesAndUpgradesOutstandingMiss reproduces the scenario in
// spec section 8: a Read joins an outstanding miss on the same block and
// stalls; a Write on that block is serviced immediately as fire-and-forget;
// replying to the outstanding miss wakes the stalled reader.
func TestMSHRCoalescesAndUpgradesOutstandingMiss(t *testing.T) {
	router, m, _ := newMSHRWithSink(4)

	first := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x1000, 0x1000).Build()
	m.AddRequest(first)

	require.True(t, first.Stalling)
	require.False(t, first.Finished)

	write := request.NewBuilder(0).WithType(request.Write).WithAddresses(0, 0x1000, 0x1000).Build()
	m.AddRequest(write)

	require.True(t, write.Finished, "a write joining an outstanding miss is fire-and-forget")
	require.EqualValues(t, 1, m.StatsRegistry().Snapshot()["coalesced"])

	advanceAll(router.stages, 10)

	require.True(t, first.Finished)
	require.True(t, first.CurrentCycle >= 0)
}

func TestMSHRSecondReaderJoiningOutstandingMissAlsoStalls(t *testing.T) {
	_, m, _ := newMSHRWithSink(4)

	first := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x2000, 0x2000).Build()
	m.AddRequest(first)

	second := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x2000, 0x2000).Build()
	m.AddRequest(second)

	require.True(t, second.Stalling)
	require.False(t, second.Finished)
	require.EqualValues(t, 1, m.StatsRegistry().Snapshot()["coalesced"])
}

func TestMSHROverflowQueuesPastCapacity(t *testing.T) {
	_, m, _ := newMSHRWithSink(1)

	a := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x1000, 0x1000).Build()
	m.AddRequest(a)

	b := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x2000, 0x2000).Build()
	m.AddRequest(b)

	require.True(t, b.Stalling)
	require.False(t, b.Finished)
	require.EqualValues(t, 1, m.StatsRegistry().Snapshot()["overflow"])
}

func TestMSHREarliestRequestSkipsStallingHeads(t *testing.T) {
	router := &fakeRouter{}
	m := cache.NewMSHR("CmpMSHR", router, 1, 64)
	s := newSink("CmpDRAM", router)
	router.stages = []component.Component{m, s}

	a := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x1000, 0x1000).Build()
	m.AddRequest(a)

	b := request.NewBuilder(0).WithType(request.Read).WithAddresses(0, 0x2000, 0x2000).Build()
	m.AddRequest(b)

	_, ok := m.EarliestRequest()
	require.False(t, ok, "the only two requests resident are the stalling original and the stalling overflow reader")
}
