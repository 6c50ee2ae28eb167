package procfile

import (
	"os"
	"strconv"
	"strings"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

func readScalarLine(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// OOMScoreHandler reads /proc/<pid>/oom_score, an unsigned long.
func OOMScoreHandler(c *Context) error {
	line, err := readScalarLine(c.Path("oom_score"))
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return &apperrors.MalformedError{Path: c.Path("oom_score"), Reason: err.Error()}
	}
	c.setU64(catalog.OOMScore, v)
	return nil
}

// OOMScoreAdjHandler reads /proc/<pid>/oom_score_adj, a signed short
// in the kernel, stored as ValueS16 to preserve the bit pattern (see
// catalog.OOMScoreAdj).
func OOMScoreAdjHandler(c *Context) error {
	line, err := readScalarLine(c.Path("oom_score_adj"))
	if err != nil {
		return err
	}
	v, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return &apperrors.MalformedError{Path: c.Path("oom_score_adj"), Reason: err.Error()}
	}
	c.setS64(catalog.OOMScoreAdj, int64(int16(v)))
	return nil
}

// TimerslackNSHandler reads /proc/<pid>/timerslack_ns. A missing file
// is treated as value 0 and success, not an error (older kernels and
// restricted ptrace access both manifest as ENOENT here).
func TimerslackNSHandler(c *Context) error {
	line, err := readScalarLine(c.Path("timerslack_ns"))
	if err != nil {
		if os.IsNotExist(err) {
			c.setU64(catalog.TimerslackNS, 0)
			return nil
		}
		return err
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return &apperrors.MalformedError{Path: c.Path("timerslack_ns"), Reason: err.Error()}
	}
	c.setU64(catalog.TimerslackNS, v)
	return nil
}

// RootHandler reads the /proc/<pid>/root symlink target. An error
// (e.g. permission denied) yields an empty string rather than a
// handler failure.
func RootHandler(c *Context) error {
	target, err := os.Readlink(c.Path("root"))
	if err != nil {
		c.setStr(catalog.Root, "")
		return nil
	}
	c.setStr(catalog.Root, target)
	return nil
}
