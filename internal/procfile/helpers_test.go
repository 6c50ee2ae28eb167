package procfile

import (
	"context"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

// newTestContext builds a Context over procRoot with a schema enabling
// exactly codes, backed by a fresh in-memory set.
func newTestContext(t *testing.T, procRoot string, pid int64, codes ...catalog.Code) (*Context, *procset.MemSet, procset.Handle) {
	t.Helper()
	enabled := make(map[catalog.Code]bool, len(codes))
	for _, c := range codes {
		enabled[c] = true
	}
	sch := schema.Build(enabled, schema.Options{}, nil)

	ms := procset.NewMemSet()
	h, err := ms.Create(context.Background(), "test/instance", "test_schema")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	txn, err := ms.Begin(context.Background(), h)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	c := &Context{
		ProcRoot: procRoot,
		PID:      pid,
		Txn:      txn,
		Schema:   sch,
		Rec:      &registry.Record{Key: registry.Key{PID: pid}},
	}
	return c, ms, h
}
