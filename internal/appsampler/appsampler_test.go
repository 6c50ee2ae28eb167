package appsampler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
)

func writeFakeProc(t *testing.T, root string, pid, ppid int64, starttime uint64) {
	t.Helper()
	pidDir := filepath.Join(root, strconv.FormatInt(pid, 10))
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	statLine := fmt.Sprintf("%d (proc) S %d", pid, ppid)
	for i := 0; i < 17; i++ {
		statLine += " 0"
	}
	statLine += fmt.Sprintf(" %d", starttime)
	for i := 0; i < 30; i++ {
		statLine += " 0"
	}
	if err := os.WriteFile(filepath.Join(pidDir, "stat"), []byte(statLine+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stat"), []byte("btime 1700000000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pidDir, "wchan"), []byte("poll_schedule_timeout"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSamplerLifecycle(t *testing.T) {
	root := t.TempDir()
	writeFakeProc(t, root, 4242, 1, 123456)

	s := New()
	factory := procset.NewMemSet()
	err := s.Configure(map[string]string{"metrics": "wchan"}, factory, Options{
		Producer:   "node1",
		SchemaName: "app_sampler",
		ProcRoot:   root,
	})
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if err := s.Configure(nil, factory, Options{}); err == nil {
		t.Fatal("expected second Configure to fail with already-configured")
	}

	ctx := context.Background()
	init := []byte(`{"event":"task_init_priv","data":{"job_id":9,"os_pid":4242,"exe":"/bin/true"}}`)
	if err := s.StreamCallback(ctx, init); err != nil {
		t.Fatalf("StreamCallback init: %v", err)
	}
	if s.TrackedSetCount() != 1 {
		t.Fatalf("TrackedSetCount = %d, want 1", s.TrackedSetCount())
	}

	if err := s.Sample(ctx); err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if s.TrackedSetCount() != 1 {
		t.Fatalf("TrackedSetCount after Sample = %d, want 1 (handler should have succeeded)", s.TrackedSetCount())
	}

	exit := []byte(`{"event":"task_exit","data":{"os_pid":4242,"start_tick":123456}}`)
	if err := s.StreamCallback(ctx, exit); err != nil {
		t.Fatalf("StreamCallback exit: %v", err)
	}
	if s.TrackedSetCount() != 0 {
		t.Fatalf("TrackedSetCount after exit = %d, want 0", s.TrackedSetCount())
	}
}

func TestSamplerNotConfigured(t *testing.T) {
	s := New()
	if err := s.Sample(context.Background()); err == nil {
		t.Fatal("expected error sampling before Configure")
	}
	if err := s.StreamCallback(context.Background(), []byte(`{}`)); err == nil {
		t.Fatal("expected error dispatching before Configure")
	}
}
