package procfile

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

var ioLabels = [7]string{
	"rchar", "wchar", "syscr", "syscw",
	"read_bytes", "write_bytes", "cancelled_write_bytes",
}

var ioCodes = [7]catalog.Code{
	catalog.IOReadB, catalog.IOWriteB, catalog.IONRead, catalog.IONWrite,
	catalog.IOReadDevB, catalog.IOWriteDevB, catalog.IOWriteCancelledB,
}

// IOHandler parses /proc/<pid>/io's seven labelled fields in fixed
// order. A short read (any label missing) is a parse failure (spec.md
// §4.5 "partial reads are failures").
func IOHandler(c *Context) error {
	f, err := os.Open(c.Path("io"))
	if err != nil {
		return err
	}
	defer f.Close()

	var vals [7]uint64
	sc := bufio.NewScanner(f)
	for i := 0; i < 7; i++ {
		if !sc.Scan() {
			return &apperrors.MalformedError{Path: c.Path("io"), Reason: "truncated before " + ioLabels[i]}
		}
		var got string
		var val uint64
		if _, err := fmt.Sscanf(sc.Text(), "%s %d", &got, &val); err != nil {
			return &apperrors.MalformedError{Path: c.Path("io"), Reason: err.Error()}
		}
		if got != ioLabels[i]+":" {
			return &apperrors.MalformedError{Path: c.Path("io"), Reason: "expected " + ioLabels[i] + ", got " + got}
		}
		vals[i] = val
	}

	for i, code := range ioCodes {
		c.setU64(code, vals[i])
	}
	return nil
}

// NOpenFilesHandler counts entries under /proc/<pid>/fd/, excluding
// "." and "..".
func NOpenFilesHandler(c *Context) error {
	entries, err := os.ReadDir(c.Path("fd"))
	if err != nil {
		return err
	}
	c.setU64(catalog.NOpenFiles, uint64(len(entries)))
	return nil
}
