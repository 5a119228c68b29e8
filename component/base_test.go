package component_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

// relay is a no-op pipeline stage: it passes every request straight
// through in zero cycles, whichever direction it arrives from.
type relay struct {
	component.Base
}

func newRelay(name string, router component.Router) *relay {
	r := &relay{}
	r.Init(name, router, r)
	return r
}

func (r *relay) ProcessRequest(_ *request.Request) int { return 0 }
func (r *relay) ProcessReturn(_ *request.Request) int  { return 0 }

type fakeRouter struct {
	stages []component.Component
}

func (f *fakeRouter) ComponentAt(_, cmpID int) component.Component {
	return f.stages[cmpID]
}

func (f *fakeRouter) PipelineLength(_ int) int {
	return len(f.stages)
}

func newTwoStagePipeline() (*fakeRouter, *relay, *relay) {
	router := &fakeRouter{}
	a := newRelay("stage0", router)
	b := newRelay("stage1", router)
	router.stages = []component.Component{a, b}
	return router, a, b
}

func TestPipelineRoundTripFinishesAtStageZero(t *testing.T) {
	_, a, b := newTwoStagePipeline()

	req := request.NewBuilder(0).
		WithType(request.Read).
		WithAddresses(0, 0x1000, 0x1000).
		WithICount(100).
		WithIssueCycle(0).
		Build()

	a.AddRequest(req)

	require.True(t, req.Finished)
	require.Equal(t, 0, req.CmpID)
	require.False(t, req.Stalling)
	require.False(t, req.Destroy)

	_ = b
}

func TestStallingRequestIsLeftBehindNotForwarded(t *testing.T) {
	router := &fakeRouter{}
	stalled := &relay{}
	stalled.Init("stalling-stage", router, stalled)
	router.stages = []component.Component{stalled}

	req := request.NewBuilder(0).WithType(request.Read).Build()
	req.Stalling = true

	stalled.SimpleAddRequest(req)
	stalled.AdvanceTo(0)

	require.False(t, req.Finished)
	require.False(t, req.Serviced)
}

func TestDestroyedRequestIsDropped(t *testing.T) {
	router, a, _ := newTwoStagePipeline()
	_ = router

	req := request.NewBuilder(0).WithType(request.Read).Build()
	req.Destroy = true

	a.SimpleAddRequest(req)
	a.AdvanceTo(0)

	require.False(t, req.Finished)
}

func TestEarliestRequestReturnsHeapRootByCycleThenSeq(t *testing.T) {
	router := &fakeRouter{}
	r := &relay{}
	r.Init("probe", router, r)
	router.stages = []component.Component{r}

	late := request.NewBuilder(0).WithType(request.Read).WithCurrentCycle(10).Build()
	early := request.NewBuilder(0).WithType(request.Read).WithCurrentCycle(5).Build()

	r.SimpleAddRequest(late)
	r.SimpleAddRequest(early)

	head, ok := r.EarliestRequest()
	require.True(t, ok)
	require.Equal(t, early, head)
}

func TestBackwardTimeDriftRestampsToLocalCycle(t *testing.T) {
	router := &fakeRouter{}
	r := &relay{}
	r.Init("drift", router, r)
	router.stages = []component.Component{r}

	first := request.NewBuilder(0).WithType(request.Read).WithCurrentCycle(20).Build()
	r.SimpleAddRequest(first)
	r.AdvanceTo(20)
	require.True(t, first.Finished)

	stale := request.NewBuilder(0).WithType(request.Read).WithCurrentCycle(5).Build()
	r.SimpleAddRequest(stale)
	r.AdvanceTo(20)

	require.True(t, stale.Finished)
	require.GreaterOrEqual(t, stale.CurrentCycle, first.CurrentCycle)
}

func TestEnableLoggingWritesRequestAddedAndHeartbeat(t *testing.T) {
	router := &fakeRouter{}
	r := &relay{}
	r.Init("logged", router, r)
	router.stages = []component.Component{r}

	dir := t.TempDir()
	require.NoError(t, r.EnableLogging(dir, "log"))

	req := request.NewBuilder(0).WithType(request.Read).Build()
	r.AddRequest(req)
	r.Heartbeat()
	r.EndSimulation()

	contents, err := os.ReadFile(filepath.Join(dir, "logged.log"))
	require.NoError(t, err)
	require.Contains(t, string(contents), "RequestAdded")
	require.Contains(t, string(contents), "Heartbeat")
}
