package simulator

import (
	"fmt"
	"io"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// ProgressReport is one heartbeat's snapshot of simulated progress
// alongside host resource usage (spec section 6, "progress file for long
// runs"): a driver polls this on every Heartbeat and writes it to a
// progress file so a long-running batch job can be watched externally.
// cmd/cachesim recreates that file on each heartbeat, so it holds only
// the latest line.
type ProgressReport struct {
	Cycle      Cycle
	CPUPercent float64
	MemPercent float64
}

// ProgressSnapshot samples the current simulated cycle and the host's
// instantaneous CPU/memory load. The CPU sample blocks for a very short
// interval (gopsutil's own sampling window), so this is meant to be
// called from a heartbeat, not a hot loop.
func (s *Simulator) ProgressSnapshot() ProgressReport {
	report := ProgressReport{Cycle: s.cycle}

	if percents, err := cpu.Percent(50*time.Millisecond, false); err == nil && len(percents) > 0 {
		report.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		report.MemPercent = vm.UsedPercent
	}

	return report
}

// WriteProgress appends report's line to w, in the plain space-separated
// textual style every other run artifact this package produces uses.
func WriteProgress(w io.Writer, report ProgressReport) error {
	_, err := fmt.Fprintf(w, "%d %.1f %.1f\n", report.Cycle, report.CPUPercent, report.MemPercent)
	return err
}
