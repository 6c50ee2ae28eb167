package procfile

import (
	"time"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// TimingHandler records the elapsed microseconds since the current
// sampling pass began, as a proxy for how stale this set's metrics are
// relative to tick start.
func TimingHandler(c *Context) error {
	elapsed := time.Since(c.TickStart)
	c.setU64(catalog.Timing, uint64(elapsed.Microseconds()))
	return nil
}
