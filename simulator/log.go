package simulator

import (
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/sim"
)

// Log accumulates the simulator's run-level event trace: one line per
// heartbeat plus whatever ad-hoc notices a driver records, in the plain
// line-oriented style spec section 6 uses for every other textual
// artifact (definition/configuration files, IPC output).
type Log struct {
	lines []string
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Heartbeat appends a heartbeat marker at the given cycle.
func (l *Log) Heartbeat(cycle sim.Cycle) {
	l.lines = append(l.lines, fmt.Sprintf("heartbeat %d", cycle))
}

// Notef appends a formatted freeform line, for driver-level notices
// (warm-up boundaries, per-CPU completion) that don't warrant their own
// method.
func (l *Log) Notef(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns every recorded line in order.
func (l *Log) Lines() []string {
	return l.lines
}

// WriteTo dumps the log to w, one line per record.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, line := range l.lines {
		n, err := fmt.Fprintln(w, line)
		total += int64(n)

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
