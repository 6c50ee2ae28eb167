package procfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

func writeSyscallFile(t *testing.T, dir string, pid int, content string) {
	t.Helper()
	pidDir := filepath.Join(dir, strconv.Itoa(pid))
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pidDir, "syscall"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSyscallHandlerRunning(t *testing.T) {
	// B4: "running" means the task is not blocked in a syscall.
	dir := t.TempDir()
	writeSyscallFile(t, dir, 100, "running\n")
	c, ms, h := newTestContext(t, dir, 100, catalog.Syscall)
	if err := SyscallHandler(c); err != nil {
		t.Fatalf("SyscallHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.Syscall)
	for i, v := range snap[idx].U64s {
		if v != 0 {
			t.Fatalf("field %d = %d, want 0", i, v)
		}
	}
}

func TestSyscallHandlerBlockedShortForm(t *testing.T) {
	dir := t.TempDir()
	writeSyscallFile(t, dir, 101, "-1 0x7ffd1234 0x7f0000000000\n")
	c, ms, h := newTestContext(t, dir, 101, catalog.Syscall)
	if err := SyscallHandler(c); err != nil {
		t.Fatalf("SyscallHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.Syscall)
	got := snap[idx].U64s
	if int64(got[0]) != -1 {
		t.Fatalf("syscall_num = %#x, want -1 bit pattern", got[0])
	}
	for _, v := range got[3:] {
		if v != 0 {
			t.Fatalf("unparsed fields should be zero, got %v", got)
		}
	}
}

func TestSyscallHandlerFullForm(t *testing.T) {
	dir := t.TempDir()
	writeSyscallFile(t, dir, 102, "1 0x1 0x2 0x3 0x4 0x5 0x6 0x7ffd1234 0x7f0000000000\n")
	c, ms, h := newTestContext(t, dir, 102, catalog.Syscall)
	if err := SyscallHandler(c); err != nil {
		t.Fatalf("SyscallHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.Syscall)
	got := snap[idx].U64s
	if len(got) != syscallFieldCount {
		t.Fatalf("len = %d, want %d", len(got), syscallFieldCount)
	}
	if got[0] != 1 || got[1] != 1 || got[6] != 6 {
		t.Fatalf("got = %v", got)
	}
}
