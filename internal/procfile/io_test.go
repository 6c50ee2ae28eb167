package procfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

func TestIOHandlerParsesAllSevenFields(t *testing.T) {
	dir := t.TempDir()
	pidDir := filepath.Join(dir, "300")
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "rchar: 1\nwchar: 2\nsyscr: 3\nsyscw: 4\nread_bytes: 5\nwrite_bytes: 6\ncancelled_write_bytes: 7\n"
	if err := os.WriteFile(filepath.Join(pidDir, "io"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, ms, h := newTestContext(t, dir, 300, catalog.IOReadB, catalog.IOWriteB, catalog.IONRead,
		catalog.IONWrite, catalog.IOReadDevB, catalog.IOWriteDevB, catalog.IOWriteCancelledB)
	if err := IOHandler(c); err != nil {
		t.Fatalf("IOHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.IOReadDevB)
	if snap[idx].U64 != 5 {
		t.Fatalf("read_bytes = %d, want 5", snap[idx].U64)
	}
}

func TestIOHandlerTruncatedIsMalformed(t *testing.T) {
	dir := t.TempDir()
	pidDir := filepath.Join(dir, "301")
	if err := os.MkdirAll(pidDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "rchar: 1\nwchar: 2\n"
	if err := os.WriteFile(filepath.Join(pidDir, "io"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, _, _ := newTestContext(t, dir, 301, catalog.IOReadB)
	if err := IOHandler(c); err == nil {
		t.Fatal("expected malformed error for truncated io file")
	}
}

func TestNOpenFilesHandlerCountsEntries(t *testing.T) {
	dir := t.TempDir()
	fdDir := filepath.Join(dir, "302", "fd")
	if err := os.MkdirAll(fdDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"0", "1", "2"} {
		if err := os.WriteFile(filepath.Join(fdDir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, ms, h := newTestContext(t, dir, 302, catalog.NOpenFiles)
	if err := NOpenFilesHandler(c); err != nil {
		t.Fatalf("NOpenFilesHandler: %v", err)
	}
	snap, _ := ms.Snapshot(h)
	idx, _ := c.Schema.Index(catalog.NOpenFiles)
	if snap[idx].U64 != 3 {
		t.Fatalf("n_open_files = %d, want 3", snap[idx].U64)
	}
}
