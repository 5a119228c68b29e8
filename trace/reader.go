// Package trace implements the external reference producers spec section 6
// names: gzip-compressed line-oriented trace file ingestion and a
// synthetic address-stream generator, both exposing the same
// "next reference, or exhausted" interface the out-of-order driver
// consumes.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/sarchlab/cachesim/request"
)

// Source produces a per-core stream of memory references. Reader and
// SyntheticGenerator both implement it.
type Source interface {
	// Next returns the next reference, or ok=false once the source is
	// exhausted (spec section 7's "Exhaustion" error kind: this is not an
	// error, the driver simply treats it as end of that core's run).
	Next() (request.Reference, bool)
	Close() error
}

// Reader parses the trace file line format from spec section 6:
// "icount ip vaddr paddr size type", one record per line, the whole file
// gzip-compressed. cpuID is folded into every returned reference's
// vaddr/ip/paddr so traces shared across cores don't collide.
type Reader struct {
	cpuID int
	f     *os.File
	gz    *gzip.Reader
	sc    *bufio.Scanner
	line  int
}

// NewReader opens path as a gzip-compressed trace file for cpuID.
func NewReader(path string, cpuID int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: opening %q: %w", path, err)
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("trace: %q is not a valid gzip stream: %w", path, err)
	}

	return &Reader{
		cpuID: cpuID,
		f:     f,
		gz:    gz,
		sc:    bufio.NewScanner(gz),
	}, nil
}

// Next parses the next non-blank trace line into a Reference.
func (r *Reader) Next() (request.Reference, bool) {
	for r.sc.Scan() {
		r.line++

		text := strings.TrimSpace(r.sc.Text())
		if text == "" {
			continue
		}

		ref, err := parseLine(text)
		if err != nil {
			panic(fmt.Sprintf("trace: malformed record at line %d: %v", r.line, err))
		}

		ref.VAddr = request.NormalizeTraceAddress(ref.VAddr, r.cpuID, false)
		ref.IP = request.NormalizeTraceAddress(ref.IP, r.cpuID, false)
		ref.PAddr = request.NormalizeTraceAddress(ref.PAddr, r.cpuID, true)

		return ref, true
	}

	return request.Reference{}, false
}

// Close releases the gzip reader and underlying file.
func (r *Reader) Close() error {
	gzErr := r.gz.Close()
	fErr := r.f.Close()

	if gzErr != nil {
		return gzErr
	}

	return fErr
}

func parseLine(text string) (request.Reference, error) {
	fields := strings.Fields(text)
	if len(fields) != 6 {
		return request.Reference{}, fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	icount, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return request.Reference{}, fmt.Errorf("icount: %w", err)
	}

	ip, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return request.Reference{}, fmt.Errorf("ip: %w", err)
	}

	vaddr, err := strconv.ParseUint(fields[2], 0, 64)
	if err != nil {
		return request.Reference{}, fmt.Errorf("vaddr: %w", err)
	}

	paddr, err := strconv.ParseUint(fields[3], 0, 64)
	if err != nil {
		return request.Reference{}, fmt.Errorf("paddr: %w", err)
	}

	size, err := strconv.ParseUint(fields[4], 10, 32)
	if err != nil {
		return request.Reference{}, fmt.Errorf("size: %w", err)
	}

	typeCode, err := strconv.Atoi(fields[5])
	if err != nil {
		return request.Reference{}, fmt.Errorf("type: %w", err)
	}

	kind := request.KindRead
	if typeCode == 1 {
		kind = request.KindWrite
	}

	return request.Reference{
		ICount: icount,
		IP:     ip,
		VAddr:  vaddr,
		PAddr:  paddr,
		Size:   uint32(size),
		Kind:   kind,
	}, nil
}

var _ io.Closer = (*Reader)(nil)
