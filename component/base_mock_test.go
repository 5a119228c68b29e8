package component_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
)

// stage embeds component.Base only to get SendForward for
// free; its own ProcessRequest/ProcessReturn are never exercised here,
// since these tests drive SendForward directly the way an eviction
// writeback or an injected prefetch would.
type stage struct {
	component.Base
}

func (s *stage) ProcessRequest(_ *request.Request) int { return 0 }
func (s *stage) ProcessReturn(_ *request.Request) int  { return 0 }

func TestSendForwardAdvancesToTheNextPipelineSlot(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewMockRouter(ctrl)
	next := NewMockComponent(ctrl)

	self := &stage{}
	self.Init("evictor", router, self)

	req := request.NewBuilder(0).
		WithType(request.Writeback).
		WithAddresses(0, 0, 0x8000).
		Build()
	req.CmpID = 0

	router.EXPECT().PipelineLength(0).Return(3)
	router.EXPECT().ComponentAt(0, 1).Return(next)
	next.EXPECT().AddRequest(req)

	self.SendForward(req)

	require.Equal(t, 1, req.CmpID)
}

func TestSendForwardFinishesTheRequestAtTheLastSingleStagePipeline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewMockRouter(ctrl)

	self := &stage{}
	self.Init("sink", router, self)

	req := request.NewBuilder(0).
		WithType(request.Writeback).
		WithAddresses(0, 0, 0x8000).
		Build()
	req.CmpID = 0

	router.EXPECT().PipelineLength(0).Return(1)

	self.SendForward(req)

	require.True(t, req.Serviced)
	require.True(t, req.Finished)
	require.Equal(t, 0, req.CmpID)
}
