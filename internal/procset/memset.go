package procset

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
)

// memHandle is the in-memory reference Handle. Its uuid is unique per
// Create call, so a handle surviving past its own Destroy can never be
// confused with a handle from a later Create reusing the same
// instance name.
type memHandle struct {
	id           uuid.UUID
	instanceName string
	schemaName   string
}

func (h *memHandle) InstanceName() string { return h.instanceName }

// MemSet is a minimal in-process SetFactory: good enough to drive
// tests, the `serve` demo command, and the debug MCP tools
// against a real Configure/Sample/StreamCallback cycle without a host
// daemon attached.
type MemSet struct {
	mu   sync.Mutex
	sets map[uuid.UUID]*memSnapshot
}

type memSnapshot struct {
	handle *memHandle
	values map[int]Value
}

// NewMemSet creates an empty in-memory set factory.
func NewMemSet() *MemSet {
	return &MemSet{sets: make(map[uuid.UUID]*memSnapshot)}
}

func (m *MemSet) Create(_ context.Context, instanceName, schemaName string) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sets {
		if s.handle.instanceName == instanceName {
			return nil, apperrors.ErrAlreadyExists
		}
	}
	h := &memHandle{id: uuid.New(), instanceName: instanceName, schemaName: schemaName}
	m.sets[h.id] = &memSnapshot{handle: h, values: make(map[int]Value)}
	return h, nil
}

func (m *MemSet) Begin(_ context.Context, h Handle) (Transaction, error) {
	mh, ok := h.(*memHandle)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	m.mu.Lock()
	snap, ok := m.sets[mh.id]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &memTxn{factory: m, snap: snap}, nil
}

func (m *MemSet) Destroy(_ context.Context, h Handle) error {
	mh, ok := h.(*memHandle)
	if !ok {
		return apperrors.ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[mh.id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.sets, mh.id)
	return nil
}

// Snapshot returns a copy of the current values for h, for tests.
func (m *MemSet) Snapshot(h Handle) (map[int]Value, bool) {
	mh, ok := h.(*memHandle)
	if !ok {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.sets[mh.id]
	if !ok {
		return nil, false
	}
	out := make(map[int]Value, len(snap.values))
	for k, v := range snap.values {
		out[k] = v
	}
	return out, true
}

// Len reports the number of live sets, for tests.
func (m *MemSet) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets)
}

type memTxn struct {
	factory *MemSet
	snap    *memSnapshot
}

func (t *memTxn) Set(idx int, value Value) {
	if idx == 0 {
		return
	}
	t.factory.mu.Lock()
	defer t.factory.mu.Unlock()
	t.snap.values[idx] = value
}

func (t *memTxn) End() error { return nil }
