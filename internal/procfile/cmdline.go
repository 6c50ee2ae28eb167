package procfile

import (
	"io"
	"os"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// CmdlineMaxBytes is the maximum number of bytes read from
// /proc/<pid>/cmdline, matching the original CMDLINE_SZ.
const CmdlineMaxBytes = 4096

// CmdlineHandler populates cmdline and cmdline_len. It never re-reads
// once a non-empty value has been recorded for this tracked set (B2).
func CmdlineHandler(c *Context) error {
	if c.Rec != nil && c.Rec.CmdlinePopulated {
		return nil
	}
	f, err := os.Open(c.Path("cmdline"))
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, CmdlineMaxBytes)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return err
	}
	buf = buf[:n]

	buf, err = QuoteArgv(buf, n, c.ArgvSep)
	if err != nil {
		return err
	}

	c.setStr(catalog.Cmdline, string(buf))
	c.setU64(catalog.CmdlineLen, uint64(n))

	if n > 0 && c.Rec != nil {
		c.Rec.CmdlinePopulated = true
	}
	return nil
}
