// Package procset defines the seam between the sampler core and the
// host's measurement-set publication fabric (create/publish/destroy a
// named set of metrics). The host daemon's real implementation is out
// of scope; this package also ships an in-memory reference
// implementation used by tests, the `serve` demo, and the debug MCP
// tools.
package procset

import "context"

// Value is a single scraped or identity value written into a set.
// Exactly one of the typed fields is meaningful, selected by the
// catalog descriptor's Type at the index being written.
type Value struct {
	U64  uint64
	S64  int64
	U32  uint32
	Char byte
	Str  string
	U32s []uint32
	U64s []uint64
}

// Handle is an opaque reference to a published measurement set. It
// must be released exactly once (invariant I2).
type Handle interface {
	// InstanceName is the stable instance name the set was created
	// with.
	InstanceName() string
}

// Transaction brackets one sampling pass's worth of writes to a set so
// observers never see a half-written snapshot.
type Transaction interface {
	// Set writes value at schema index idx. idx == 0 (the "may-set"
	// sentinel for a disabled metric) is always a silent no-op.
	Set(idx int, value Value)
	// End commits the transaction. Errors returned by End are
	// treated like any other handler error by the sampler engine.
	End() error
}

// SetFactory is the host collaborator that creates, publishes and
// destroys measurement sets. All methods are safe for concurrent use
// only insofar as the sampler core already serializes its own calls
// through the registry mutex; the factory itself need not be
// reentrant beyond that.
type SetFactory interface {
	// Create publishes a new set with the given instance name and
	// schema, returning a handle. Returns apperrors.ErrAlreadyExists
	// or an *apperrors.OutOfMemoryError on the corresponding host
	// failure.
	Create(ctx context.Context, instanceName string, schemaName string) (Handle, error)
	// Begin opens a transaction on handle for one sampling pass.
	Begin(ctx context.Context, h Handle) (Transaction, error)
	// Destroy deregisters, unpublishes, and releases h. Must be
	// idempotent-safe to call at most once per handle; the sampler
	// core guarantees it is never called twice for the same handle.
	Destroy(ctx context.Context, h Handle) error
}
