package procfile

import "golang.org/x/sys/unix"

// ClockTicksPerSec returns the kernel's reported ticks-per-second
// (_SC_CLK_TCK), used both for the optional sc_clk_tck meta metric and
// for converting a /proc/<pid>/stat start-tick field into wall-clock
// time. Falls back to 100 (the near-universal historical default) if
// the syscall fails, matching the value the teacher's own code
// hardcodes as a simplification.
func ClockTicksPerSec() int64 {
	n, err := unix.Sysconf(unix.SC_CLK_TCK)
	if err != nil || n <= 0 {
		return 100
	}
	return n
}
