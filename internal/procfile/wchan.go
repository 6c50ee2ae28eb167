package procfile

import (
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// WchanHandler reads /proc/<pid>/wchan, a short string naming the
// kernel function the task is blocked in (empty if running).
func WchanHandler(c *Context) error {
	line, err := readScalarLine(c.Path("wchan"))
	if err != nil {
		return err
	}
	c.setStr(catalog.Wchan, line)
	return nil
}
