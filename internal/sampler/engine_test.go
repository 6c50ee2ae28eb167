package sampler

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

func TestBuildHandlerVectorDedupsContiguousRange(t *testing.T) {
	enabled := map[catalog.Code]bool{
		catalog.IOReadB:  true,
		catalog.IOWriteB: true,
		catalog.Wchan:    true,
	}
	ids := BuildHandlerVector(enabled)
	if len(ids) != 2 {
		t.Fatalf("ids = %v, want 2 handlers (io once, wchan once)", ids)
	}
	if ids[0] != catalog.HandlerIO || ids[1] != catalog.HandlerWchan {
		t.Fatalf("ids = %v", ids)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newHarness(t *testing.T, pid int64) (*Engine, *registry.Registry, *procset.MemSet, procset.Handle) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, strconv.FormatInt(pid, 10), "wchan"), "poll_schedule_timeout")

	enabled := map[catalog.Code]bool{catalog.Wchan: true}
	sch := schema.Build(enabled, schema.Options{}, nil)

	factory := procset.NewMemSet()
	h, err := factory.Create(context.Background(), "set1", "app_sampler")
	if err != nil {
		t.Fatal(err)
	}

	reg := registry.New()
	rec := &registry.Record{Key: registry.Key{StartTick: 1, PID: pid}, Handle: h, TaskRank: -1}
	reg.Insert(rec)

	eng := New(reg, factory, sch, enabled, "", root)
	return eng, reg, factory, h
}

func TestTickWritesWchan(t *testing.T) {
	eng, reg, factory, h := newHarness(t, 4242)
	if err := eng.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", reg.Len())
	}
	values, ok := factory.Snapshot(h)
	if !ok {
		t.Fatal("expected snapshot to exist")
	}
	idx, _ := eng.Schema.Index(catalog.Wchan)
	if values[idx].Str != "poll_schedule_timeout" {
		t.Fatalf("wchan value = %q", values[idx].Str)
	}
}

func TestTickDestroysDeadSet(t *testing.T) {
	eng, reg, factory, h := newHarness(t, 9999)
	// Remove the wchan file so the handler fails every pass.
	if err := os.Remove(eng.ProcRoot + "/9999/wchan"); err != nil {
		t.Fatal(err)
	}
	if err := eng.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("registry len = %d, want 0 after dead set removed", reg.Len())
	}
	if factory.Len() != 0 {
		t.Fatal("expected factory set to be destroyed")
	}
	_ = h
}
