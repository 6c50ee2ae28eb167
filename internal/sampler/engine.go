// Package sampler is the tick engine: once per sampling pass it walks
// every tracked set, runs the handler vector against it inside one
// transaction, and destroys any set whose handler chain failed.
// Grounded on the teacher's internal/orchestrator.Orchestrator.Run
// collect-then-act shape, generalized from "run every collector once
// per invocation" to "run every live-process handler once per tick"
// and tightened to the single registry-wide mutex spec.md §5
// specifies instead of per-field locking.
package sampler

import (
	"context"
	"time"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/diag"
	"github.com/ovis-hpc/ldms-appsampler/internal/procfile"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

// Engine runs one sampling pass across every record in a Registry.
type Engine struct {
	Registry *registry.Registry
	Factory  procset.SetFactory
	Schema   *schema.Schema
	ArgvSep  string
	ProcRoot string
	Diag     *diag.Once

	handlerIDs []catalog.HandlerID
}

// New builds an Engine whose handler vector is the deduplicated,
// ascending-code-order set of handlers needed to cover enabled.
func New(reg *registry.Registry, factory procset.SetFactory, sch *schema.Schema, enabled map[catalog.Code]bool, argvSep, procRoot string) *Engine {
	return &Engine{
		Registry:   reg,
		Factory:    factory,
		Schema:     sch,
		ArgvSep:    argvSep,
		ProcRoot:   procRoot,
		handlerIDs: BuildHandlerVector(enabled),
	}
}

func (e *Engine) diag() *diag.Once {
	if e.Diag != nil {
		return e.Diag
	}
	return diag.NewOnce(diag.Noop{})
}

// BuildHandlerVector resolves the enabled metric codes to the
// deduplicated ordered list of handlers that must run each tick: two
// adjacent enabled codes sharing the same handler contribute it only
// once, matching the original plugin's "already added" skip when
// building its function table.
func BuildHandlerVector(enabled map[catalog.Code]bool) []catalog.HandlerID {
	var ids []catalog.HandlerID
	for _, d := range catalog.Descriptors() {
		if d.Code == catalog.All || !enabled[d.Code] {
			continue
		}
		id, ok := catalog.HandlerFor(d.Code)
		if !ok {
			continue
		}
		if len(ids) > 0 && ids[len(ids)-1] == id {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Tick runs one sampling pass: every tracked set gets a transaction,
// the handler vector runs against it in order, and any set whose
// handler chain (or transaction commit) fails is destroyed once the
// registry walk completes, outside the per-record transaction.
func (e *Engine) Tick(ctx context.Context) error {
	e.Registry.Lock()
	defer e.Registry.Unlock()

	tickStart := time.Now()
	var dead []*registry.Record

	e.Registry.IterateLocked(func(rec *registry.Record) bool {
		txn, err := e.Factory.Begin(ctx, rec.Handle)
		if err != nil {
			rec.Dead = err
			dead = append(dead, rec)
			return true
		}

		pc := &procfile.Context{
			ProcRoot:  e.ProcRoot,
			PID:       rec.Key.PID,
			Txn:       txn,
			Schema:    e.Schema,
			ArgvSep:   e.ArgvSep,
			TickStart: tickStart,
			Rec:       rec,
		}

		for _, id := range e.handlerIDs {
			fn := procfile.Handlers[id]
			if err := fn(pc); err != nil {
				e.diag().Log("removing set %s: %v (%s)", rec.Handle.InstanceName(), err, id)
				rec.Dead = err
				break
			}
		}

		if err := txn.End(); err != nil && rec.Dead == nil {
			rec.Dead = err
		}
		if rec.Dead != nil {
			dead = append(dead, rec)
		}
		return true
	})

	for _, rec := range dead {
		e.Registry.RemoveLocked(rec.Key)
		if err := e.Factory.Destroy(ctx, rec.Handle); err != nil {
			e.diag().WarnOnce("destroy:"+rec.Handle.InstanceName(), "destroying dead set %s: %v", rec.Handle.InstanceName(), err)
		}
	}
	return nil
}

// Len reports how many handlers the engine will run each tick, for
// diagnostics.
func (e *Engine) Len() int { return len(e.handlerIDs) }
