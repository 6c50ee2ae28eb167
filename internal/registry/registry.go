// Package registry is the mutex-guarded ordered map from a tracked
// process's composite key to its tracked-set record.
package registry

import (
	"sync"

	omap "github.com/wk8/go-ordered-map/v2"

	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
)

// Key is the registry's composite key: process start tick and pid.
// Two events referring to the same Key collapse into at most one
// tracked set (invariant I1).
type Key struct {
	StartTick uint64
	PID       int64
}

// Less orders keys by StartTick (unsigned) then PID (signed), the
// total order spec.md §4.3 specifies for an ordered walk.
func Less(a, b Key) bool {
	if a.StartTick != b.StartTick {
		return a.StartTick < b.StartTick
	}
	return a.PID < b.PID
}

// Record is a tracked set: the registry key, its published set
// handle, the task rank known so far, and a transient dead marker set
// only during a sampling pass.
type Record struct {
	Key      Key
	Handle   procset.Handle
	TaskRank int64 // -1 if unknown
	Dead     error // non-nil only between "handler failed" and "destroyed"

	// CmdlinePopulated is set once the cmdline handler has written a
	// non-empty value, so later ticks skip the re-read (B2).
	CmdlinePopulated bool

	// identityWritten is set to true once the always-on identity fields have
	// been written (invariant I4: written exactly once, at creation).
	identityWritten bool
}

// IdentityWritten reports whether the always-on identity fields have
// already been written for this record.
func (r *Record) IdentityWritten() bool { return r.identityWritten }

// MarkIdentityWritten records that the always-on identity fields have
// been written. Idempotent; callers need not guard repeat calls.
func (r *Record) MarkIdentityWritten() { r.identityWritten = true }

// Registry is the mutex-guarded ordered map of live tracked sets.
type Registry struct {
	mu sync.Mutex
	m  *omap.OrderedMap[Key, *Record]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{m: omap.New[Key, *Record]()}
}

// Find looks up the record for key.
func (r *Registry) Find(key Key) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.Get(key)
}

// Insert adds rec under its Key, replacing any existing record with
// that key. Callers implementing the dedup/upgrade logic in §4.4
// step 8 must Find first and decide whether to call Insert at all.
func (r *Registry) Insert(rec *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Set(rec.Key, rec)
}

// Remove deletes the record for key, returning it if present.
func (r *Registry) Remove(key Key) (*Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.m.Get(key)
	if !ok {
		return nil, false
	}
	r.m.Delete(key)
	return rec, true
}

// Len reports the number of tracked sets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m.Len()
}

// Iterate calls fn for every tracked set in stable insertion order.
// Iteration order is not semantically significant (spec.md §4.3); it
// is exposed only because the underlying ordered map provides it for
// free. fn must not call back into the registry: Iterate already
// holds the mutex for its duration.
func (r *Registry) Iterate(fn func(*Record) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Value) {
			return
		}
	}
}

// Lock and Unlock expose the registry's mutex directly so the sampler
// engine can hold it across an entire tick (acquire once, iterate,
// destroy dead sets, release), matching the "single per-instance
// mutex" concurrency model in spec.md §5 instead of re-locking per
// method call.
func (r *Registry) Lock()   { r.mu.Lock() }
func (r *Registry) Unlock() { r.mu.Unlock() }

// FindLocked/InsertLocked/RemoveLocked/IterateLocked are the
// lock-free counterparts used by a caller that already holds the
// mutex via Lock/Unlock above.
func (r *Registry) FindLocked(key Key) (*Record, bool) { return r.m.Get(key) }

func (r *Registry) InsertLocked(rec *Record) { r.m.Set(rec.Key, rec) }

func (r *Registry) RemoveLocked(key Key) (*Record, bool) {
	rec, ok := r.m.Get(key)
	if !ok {
		return nil, false
	}
	r.m.Delete(key)
	return rec, true
}

func (r *Registry) IterateLocked(fn func(*Record) bool) {
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Value) {
			return
		}
	}
}
