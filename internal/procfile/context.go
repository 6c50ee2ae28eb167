// Package procfile implements one file parser per handler family the
// sampler engine dispatches to, grounded on the teacher's
// collector.ProcessCollector.readProcPID (comm-in-parens stat
// parsing) and executor/parsers.go (regex-driven, sentinel-error
// parsing) style.
package procfile

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

// Context is everything a handler needs for one (pid, tick) pass.
type Context struct {
	// ProcRoot overrides "/proc" for tests; empty means the real
	// kernel-exposed tree.
	ProcRoot string
	PID      int64
	Txn      procset.Transaction
	Schema   *schema.Schema
	ArgvSep  string

	// TickStart is the sampling pass start timestamp, consumed by the
	// timing handler to compute sample_us.
	TickStart time.Time

	// Rec carries per-set scratch state that must persist across
	// ticks (e.g. "cmdline already populated").
	Rec *registry.Record
}

// Path builds /proc/<pid>/<leaf...> under Context.ProcRoot.
func (c *Context) Path(leaf ...string) string {
	root := c.ProcRoot
	if root == "" {
		root = "/proc"
	}
	parts := append([]string{root, strconv.FormatInt(c.PID, 10)}, leaf...)
	return filepath.Join(parts...)
}

// index is the may-set lookup: returns 0, false for a disabled code.
func (c *Context) index(code catalog.Code) (int, bool) {
	if c.Schema == nil {
		return 0, false
	}
	return c.Schema.Index(code)
}

// setU64 writes val at code's schema index, a no-op if disabled.
func (c *Context) setU64(code catalog.Code, val uint64) {
	idx, ok := c.index(code)
	if !ok {
		return
	}
	c.Txn.Set(idx, procset.Value{U64: val})
}

// setS64 writes val at code's schema index, a no-op if disabled.
func (c *Context) setS64(code catalog.Code, val int64) {
	idx, ok := c.index(code)
	if !ok {
		return
	}
	c.Txn.Set(idx, procset.Value{S64: val})
}

// setChar writes val at code's schema index, a no-op if disabled.
func (c *Context) setChar(code catalog.Code, val byte) {
	idx, ok := c.index(code)
	if !ok {
		return
	}
	c.Txn.Set(idx, procset.Value{Char: val})
}

// setStr writes val at code's schema index, a no-op if disabled.
func (c *Context) setStr(code catalog.Code, val string) {
	idx, ok := c.index(code)
	if !ok {
		return
	}
	c.Txn.Set(idx, procset.Value{Str: val})
}

// setU64Array writes vals at code's schema index, a no-op if disabled.
func (c *Context) setU64Array(code catalog.Code, vals []uint64) {
	idx, ok := c.index(code)
	if !ok {
		return
	}
	c.Txn.Set(idx, procset.Value{U64s: vals})
}

// setU32Array writes vals at code's schema index, a no-op if disabled.
func (c *Context) setU32Array(code catalog.Code, vals []uint32) {
	idx, ok := c.index(code)
	if !ok {
		return
	}
	c.Txn.Set(idx, procset.Value{U32s: vals})
}

// Handler reads one kernel file (or computes one derived metric) and
// writes the result into the current transaction. It returns a
// non-nil error when the process is presumed gone or the file failed
// to satisfy its parse contract (spec.md §4.5 handler contract).
type Handler func(c *Context) error

// Handlers maps each catalog.HandlerID to its implementation.
var Handlers = map[catalog.HandlerID]Handler{
	catalog.HandlerCmdline:      CmdlineHandler,
	catalog.HandlerNOpenFiles:   NOpenFilesHandler,
	catalog.HandlerIO:           IOHandler,
	catalog.HandlerOOMScore:     OOMScoreHandler,
	catalog.HandlerOOMScoreAdj:  OOMScoreAdjHandler,
	catalog.HandlerRoot:         RootHandler,
	catalog.HandlerStat:         StatHandler,
	catalog.HandlerStatus:       StatusHandler,
	catalog.HandlerSyscall:      SyscallHandler,
	catalog.HandlerTimerslackNS: TimerslackNSHandler,
	catalog.HandlerWchan:        WchanHandler,
	catalog.HandlerTiming:       TimingHandler,
}
