package procfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

func writeScalarFile(t *testing.T, dir string, pid int64, leaf, content string) {
	t.Helper()
	pidDir := filepath.Join(dir, "400")
	_ = pid
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pidDir, leaf), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOOMScoreAdjSignedTruncation(t *testing.T) {
	dir := t.TempDir()
	writeScalarFile(t, dir, 400, "oom_score_adj", "-17\n")
	c, ms, h := newTestContext(t, dir, 400, catalog.OOMScoreAdj)
	if err := OOMScoreAdjHandler(c); err != nil {
		t.Fatalf("OOMScoreAdjHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.OOMScoreAdj)
	if snap[idx].S64 != -17 {
		t.Fatalf("oom_score_adj = %d, want -17", snap[idx].S64)
	}
}

func TestTimerslackNSMissingFileIsZeroSuccess(t *testing.T) {
	dir := t.TempDir()
	pidDir := filepath.Join(dir, "401")
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// timerslack_ns deliberately not created: ENOENT path.
	c, ms, h := newTestContext(t, dir, 401, catalog.TimerslackNS)
	if err := TimerslackNSHandler(c); err != nil {
		t.Fatalf("TimerslackNSHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.TimerslackNS)
	if snap[idx].U64 != 0 {
		t.Fatalf("timerslack_ns = %d, want 0", snap[idx].U64)
	}
}

func TestRootHandlerEmptyOnError(t *testing.T) {
	dir := t.TempDir()
	pidDir := filepath.Join(dir, "402")
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	// root symlink deliberately absent.
	c, ms, h := newTestContext(t, dir, 402, catalog.Root)
	if err := RootHandler(c); err != nil {
		t.Fatalf("RootHandler returned error, want success with empty string: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.Root)
	if snap[idx].Str != "" {
		t.Fatalf("root = %q, want empty", snap[idx].Str)
	}
}
