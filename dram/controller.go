package dram

import (
	"fmt"

	"github.com/sarchlab/cachesim/component"
	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/sim/stats"
)

// Config bundles the controller's construction-time geometry, timing,
// and scheduler parameters.
type Config struct {
	Geometry           Geometry
	Timing             Timing // memory-clock units; Scale is applied internally
	MemProcessorRatio  int     `param:"memProcessorRatio"`
	WriteQueueCapacity int     `param:"writeQueueCapacity"`
}

// Controller is the DRAM memory controller pipeline stage (spec section
// 4.9): it maps addresses to channel/rank/bank/row/column, queues
// requests per channel, and drives the FR-FCFS-DWF scheduler through a
// self-recurring Clean-type tick request, exactly the self-recurring
// mechanism spec section 4.1 defines generically and cache.LLCwAWB
// already exercises for its own Clean walk.
type Controller struct {
	component.Base

	mapper   AddressMapper
	timing   Timing
	ratio    int
	wqCap    int
	channels []*Channel

	tickRunning []bool

	readCounter  stats.Handle
	writeCounter stats.Handle
}

// New constructs a DRAM controller with cfg.Geometry.NumChannels channels.
func New(name string, router component.Router, cfg Config) *Controller {
	channels := make([]*Channel, cfg.Geometry.NumChannels)
	for i := range channels {
		channels[i] = NewChannel(cfg.Geometry.NumRanks, cfg.Geometry.NumBanks)
	}

	c := &Controller{
		mapper:      NewAddressMapper(cfg.Geometry),
		timing:      cfg.Timing.Scale(cfg.MemProcessorRatio),
		ratio:       cfg.MemProcessorRatio,
		wqCap:       cfg.WriteQueueCapacity,
		channels:    channels,
		tickRunning: make([]bool, cfg.Geometry.NumChannels),
	}
	c.Init(name, router, c)

	c.readCounter = c.Stats.Register("reads", "read commands serviced")
	c.writeCounter = c.Stats.Register("writes", "write commands serviced")

	return c
}

// isTick reports whether req is this controller's own self-recurring
// scheduler wakeup rather than a demand/writeback request.
func isTick(req *request.Request) bool {
	return req.Type == request.Clean
}

// ProcessRequest implements the DRAM forward rules: reject a direct
// Write/PartialWrite (spec section 4.1's "the DRAM queue refuses direct
// Write or PartialWrite as well"), otherwise map the address, enqueue on
// the resolved channel, mark the request Stalling so the framework
// leaves it queued here until the scheduler services it, and ensure a
// tick is running for that channel.
func (c *Controller) ProcessRequest(req *request.Request) int {
	if isTick(req) {
		return c.tick(req)
	}

	if req.Type == request.Write || req.Type == request.PartialWrite {
		panic(fmt.Sprintf("%s: received direct Write/PartialWrite; the memory controller only accepts writes via Writeback", c.Name()))
	}

	mapped := c.mapper.Map(req.PAddr)
	req.DRAMChannelID = mapped.Channel
	req.DRAMRankID = mapped.Rank
	req.DRAMBankID = mapped.Bank
	req.DRAMRowID = mapped.Row
	req.DRAMColumnID = mapped.Column

	ch := c.channels[mapped.Channel]
	cmd := &queuedCmd{req: req, rank: mapped.Rank, bank: mapped.Bank, row: mapped.Row}

	if req.Type == request.Writeback || req.Type == request.AggWb {
		ch.WriteQ = append(ch.WriteQ, cmd)
		c.Stats.Inc(c.writeCounter)
	} else {
		ch.ReadQ = append(ch.ReadQ, cmd)
		c.Stats.Inc(c.readCounter)
	}

	req.Stalling = true

	c.ensureTick(mapped.Channel, req.CPUID)

	return 0
}

// ProcessReturn has nothing to do for the controller: a request that
// completed DRAM service is driven back into the pipeline from tick as
// req.Serviced=true, and its pass through here returns 0 at once.
func (c *Controller) ProcessReturn(_ *request.Request) int {
	return 0
}

func (c *Controller) ensureTick(channel, cpuID int) {
	if c.tickRunning[channel] {
		return
	}

	c.tickRunning[channel] = true

	tick := request.NewBuilder(cpuID).
		WithType(request.Clean).
		WithCurrentCycle(c.LocalCycle() + 1).
		Build()
	tick.IniType = request.InitiatorComponent
	tick.IniRef = component.Handle(c)
	tick.DRAMChannelID = channel

	c.SimpleAddRequest(tick)
}

// tick runs one FR-FCFS-DWF scheduling attempt for its channel. If a
// column command completed a queued request, that request is driven back
// into the pipeline immediately as a fresh AddRequest (Serviced=true), so
// the framework's own sendToNextComponent routes it toward its
// originator exactly as any other returning request. The tick then
// reschedules itself: one cycle later if it made state-machine progress
// this attempt (more work may already be ready), a full memory-clock
// tick later per spec step 3 if nothing was schedulable, or never again
// (Destroy=true) once both queues have drained, matching the framework's
// generic Clean self-recurrence rule (spec section 4.1).
func (c *Controller) tick(req *request.Request) int {
	ch := c.channels[req.DRAMChannelID]

	result := scheduleOnce(ch, c.LocalCycle(), c.timing, c.wqCap)

	if result.done != nil {
		done := result.done.req
		done.Stalling = false
		done.Serviced = true
		done.CurrentCycle = c.LocalCycle() + result.latency
		c.AddRequest(done)
	}

	if len(ch.ReadQ) == 0 && len(ch.WriteQ) == 0 {
		req.Destroy = true
		c.tickRunning[req.DRAMChannelID] = false

		return 0
	}

	if result.issued {
		return 1
	}

	return c.ratio
}

// Channel exposes channel i's state for statistics/testing.
func (c *Controller) Channel(i int) *Channel { return c.channels[i] }
