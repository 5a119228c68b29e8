package hook

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// LogHook is a Hook that records one line per fired position to a
// per-component logfile, adapted from the teacher's sim.LogHookBase
// (a *log.Logger wrapper) into a concrete Hook rather than a bare base
// type, since this module has exactly one logging destination to support
// (spec section 6's {simFolder}/{compName}.{logName}) rather than a
// family of LogHook variants.
type LogHook struct {
	*log.Logger

	file *os.File
}

// NewLogHook creates (or truncates) simFolder/compName.logName and returns
// a LogHook writing to it. The caller owns the returned hook and must
// Close it once the component is done logging.
func NewLogHook(simFolder, compName, logName string) (*LogHook, error) {
	path := filepath.Join(simFolder, fmt.Sprintf("%s.%s", compName, logName))

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &LogHook{
		Logger: log.New(f, "", log.LstdFlags),
		file:   f,
	}, nil
}

// Func implements Hook: it writes the position name plus whatever item and
// detail the firing site supplied.
func (h *LogHook) Func(ctx Ctx) {
	h.Printf("%s item=%v detail=%v", ctx.Pos.Name, ctx.Item, ctx.Detail)
}

// Close closes the underlying logfile.
func (h *LogHook) Close() error {
	return h.file.Close()
}
