// Package idgen generates unique ID strings. Memory requests do not carry
// these IDs; the request package numbers requests with its own sequence
// counter. It follows the teacher's sim/id package shape: a
// default sequential generator for deterministic, reproducible runs, and an
// xid-backed generator (the teacher's own commented-out alternative,
// spelled out here) for runs where global uniqueness across independently
// seeded driver instances matters more than readability of the trace log.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique request/event ID strings.
type Generator interface {
	Generate() string
}

// NewSequential returns a Generator that produces "1", "2", "3", ... This
// is the default: it keeps simulation logs human-diffable across runs.
func NewSequential() Generator {
	return &sequential{}
}

type sequential struct {
	next uint64
}

func (g *sequential) Generate() string {
	n := atomic.AddUint64(&g.next, 1)
	return strconv.FormatUint(n, 10)
}

// NewXID returns a Generator backed by rs/xid, producing globally unique,
// sortable-by-creation-time IDs. Useful when merging logs from multiple
// simulator processes.
func NewXID() Generator {
	return xidGenerator{}
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
