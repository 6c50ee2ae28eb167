package events

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

func writeFakeProc(t *testing.T, root string, pid, ppid int64, starttime uint64) {
	t.Helper()
	pidDir := filepath.Join(root, strconv.FormatInt(pid, 10))
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	statLine := fmt.Sprintf("%d (proc) S %d", pid, ppid)
	// pad up to field 22 (starttime) with zeros, matching statFieldCodes order.
	for i := 0; i < 17; i++ {
		statLine += " 0"
	}
	statLine += fmt.Sprintf(" %d", starttime)
	// trailing fields to satisfy the 49-field minimum.
	for i := 0; i < 30; i++ {
		statLine += " 0"
	}
	if err := os.WriteFile(filepath.Join(pidDir, "stat"), []byte(statLine+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stat"), []byte("btime 1700000000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestHandler(t *testing.T, procRoot string) (*Handler, *procset.MemSet) {
	t.Helper()
	sch := schema.Build(map[catalog.Code]bool{catalog.StatPID: true}, schema.Options{SCClkTck: true},
		[]schema.HostField{{Name: "job_id"}, {Name: "component_id"}})
	ms := procset.NewMemSet()
	return &Handler{
		Registry:   registry.New(),
		Schema:     sch,
		Factory:    ms,
		Producer:   "node1",
		SchemaName: "app_sampler",
		Options:    Options{SCClkTck: 100},
		ProcRoot:   procRoot,
	}, ms
}

func TestHandleTaskInitPrivCreatesTrackedSet(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 4242, 1, 123456)
	h, ms := newTestHandler(t, root)

	data := []byte(`{"event":"task_init_priv","data":{"job_id":9,"os_pid":4242,"exe":"/bin/true"}}`)
	if err := h.Dispatch(context.Background(), data); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if h.Registry.Len() != 1 {
		t.Fatalf("registry len = %d, want 1", h.Registry.Len())
	}
	if ms.Len() != 1 {
		t.Fatalf("set count = %d, want 1", ms.Len())
	}
}

func TestHandleTaskInitPrivStartTicklessIgnored(t *testing.T) {
	root := t.TempDir()
	// No /proc/<pid>/stat written: start tick can't be resolved.
	h, ms := newTestHandler(t, root)

	data := []byte(`{"event":"task_init_priv","data":{"job_id":9,"os_pid":9999}}`)
	if err := h.Dispatch(context.Background(), data); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if h.Registry.Len() != 0 || ms.Len() != 0 {
		t.Fatal("start-tickless pid should not create a tracked set")
	}
}

func TestHandleTaskInitPrivRankUpgrade(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 100, 1, 777)
	h, ms := newTestHandler(t, root)

	unranked := []byte(`{"event":"task_init_priv","data":{"job_id":1,"os_pid":100}}`)
	if err := h.Dispatch(context.Background(), unranked); err != nil {
		t.Fatalf("Dispatch unranked: %v", err)
	}
	if h.Registry.Len() != 1 {
		t.Fatalf("registry len = %d after unranked init", h.Registry.Len())
	}

	ranked := []byte(`{"event":"task_init_priv","data":{"job_id":1,"os_pid":100,"task_global_id":3}}`)
	if err := h.Dispatch(context.Background(), ranked); err != nil {
		t.Fatalf("Dispatch ranked: %v", err)
	}
	if h.Registry.Len() != 1 {
		t.Fatalf("registry len = %d after rank upgrade, want 1 (swap not grow)", h.Registry.Len())
	}
	if ms.Len() != 1 {
		t.Fatalf("set count = %d after upgrade, want 1 (old set destroyed)", ms.Len())
	}
	rec, ok := h.Registry.Find(registry.Key{StartTick: 777, PID: 100})
	if !ok || rec.TaskRank != 3 {
		t.Fatalf("rec.TaskRank = %v, want 3", rec)
	}
}

func TestHandleTaskInitPrivDuplicateRankDropped(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 101, 1, 888)
	h, ms := newTestHandler(t, root)

	first := []byte(`{"event":"task_init_priv","data":{"job_id":1,"os_pid":101,"task_global_id":5}}`)
	if err := h.Dispatch(context.Background(), first); err != nil {
		t.Fatalf("Dispatch first: %v", err)
	}
	second := []byte(`{"event":"task_init_priv","data":{"job_id":1,"os_pid":101,"task_global_id":5}}`)
	if err := h.Dispatch(context.Background(), second); err != nil {
		t.Fatalf("Dispatch second: %v", err)
	}
	if h.Registry.Len() != 1 || ms.Len() != 1 {
		t.Fatalf("duplicate same-rank init should be dropped, registry=%d sets=%d", h.Registry.Len(), ms.Len())
	}
}

func TestHandleTaskExitRemovesTrackedSet(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 202, 1, 555)
	h, ms := newTestHandler(t, root)

	init := []byte(`{"event":"task_init_priv","data":{"job_id":1,"os_pid":202}}`)
	if err := h.Dispatch(context.Background(), init); err != nil {
		t.Fatalf("Dispatch init: %v", err)
	}
	exit := []byte(`{"event":"task_exit","data":{"os_pid":202}}`)
	if err := h.Dispatch(context.Background(), exit); err != nil {
		t.Fatalf("Dispatch exit: %v", err)
	}
	if h.Registry.Len() != 0 {
		t.Fatalf("registry len = %d, want 0 after exit", h.Registry.Len())
	}
	if ms.Len() != 0 {
		t.Fatalf("set count = %d, want 0 after exit", ms.Len())
	}
}

func TestHandleTaskExitUnknownPidIsNotAnError(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 303, 1, 111)
	h, _ := newTestHandler(t, root)

	exit := []byte(`{"event":"task_exit","data":{"os_pid":303}}`)
	if err := h.Dispatch(context.Background(), exit); err != nil {
		t.Fatalf("exit for untracked pid should not error: %v", err)
	}
}

func TestDispatchIgnoresUnknownEvent(t *testing.T) {
	h, _ := newTestHandler(t, t.TempDir())
	data := []byte(`{"event":"some_other_event","data":{}}`)
	if err := h.Dispatch(context.Background(), data); err != nil {
		t.Fatalf("unknown event should be ignored, got %v", err)
	}
}
