package events

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ovis-hpc/ldms-appsampler/internal/procfile"
)

// statStarttimeIndex is /proc/<pid>/stat's field 22 (starttime, ticks
// since boot), expressed as an offset into ParseStat's fields slice
// (which starts at field 4, ppid).
const statStarttimeIndex = 22 - 4

func readStatPath(procRoot string, pid int64) string {
	root := procRoot
	if root == "" {
		root = "/proc"
	}
	return filepath.Join(root, strconv.FormatInt(pid, 10), "stat")
}

// startTickFromProc reads a pid's start tick from /proc/<pid>/stat
// when the event itself didn't carry one, exactly as get_start_tick
// falls back in the original daemon.
func startTickFromProc(procRoot string, pid int64) uint64 {
	data, err := os.ReadFile(readStatPath(procRoot, pid))
	if err != nil {
		return 0
	}
	_, _, _, fields, err := procfile.ParseStat(string(data))
	if err != nil || len(fields) <= statStarttimeIndex {
		return 0
	}
	return fields[statStarttimeIndex]
}

// parentAndThread resolves a pid's parent pid and whether it is a
// thread (its Tgid differs from its own pid) by reading /proc
// directly, used when the event doesn't carry parent_pid/is_thread.
func parentAndThread(procRoot string, pid int64) (parent int64, isThread bool) {
	data, err := os.ReadFile(readStatPath(procRoot, pid))
	if err == nil {
		if _, _, _, fields, err := procfile.ParseStat(string(data)); err == nil && len(fields) > 0 {
			parent = int64(fields[0]) // PPid is the first field after comm/state
		}
	}

	root := procRoot
	if root == "" {
		root = "/proc"
	}
	statusPath := filepath.Join(root, strconv.FormatInt(pid, 10), "status")
	sdata, err := os.ReadFile(statusPath)
	if err != nil {
		return parent, false
	}
	for _, line := range strings.Split(string(sdata), "\n") {
		if strings.HasPrefix(line, "Tgid:") {
			tgidStr := strings.TrimSpace(strings.TrimPrefix(line, "Tgid:"))
			if tgid, err := strconv.ParseInt(tgidStr, 10, 64); err == nil {
				isThread = tgid != pid
			}
			break
		}
	}
	return parent, isThread
}

// bootTimeSeconds reads /proc/stat's "btime" line (seconds since the
// epoch at boot), used to turn a start_tick into a wall-clock
// start_time string when the event didn't carry one.
func bootTimeSeconds(procRoot string) (int64, error) {
	root := procRoot
	if root == "" {
		root = "/proc"
	}
	data, err := os.ReadFile(filepath.Join(root, "stat"))
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "btime ") {
			return strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "btime ")), 10, 64)
		}
	}
	return 0, os.ErrNotExist
}

// startTimeString formats a start_tick as "secs.usecs" wall-clock time
// relative to system boot, the form used when the event itself didn't
// carry a "start" string (the netlink notifier always does; the
// spank-plugin path does not).
func startTimeString(procRoot string, startTick uint64, clkTck int64) string {
	boot, err := bootTimeSeconds(procRoot)
	if err != nil || clkTck <= 0 {
		return "0.000000"
	}
	secs := boot + int64(startTick)/clkTck
	remainderTicks := int64(startTick) % clkTck
	usecs := remainderTicks * 1000000 / clkTck
	return strconv.FormatInt(secs, 10) + "." + padUsecs(usecs)
}

func padUsecs(usecs int64) string {
	s := strconv.FormatInt(usecs, 10)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

// exeFromProc reads the /proc/<pid>/exe symlink target, used when the
// event didn't carry an "exe" field.
func exeFromProc(procRoot string, pid int64) string {
	root := procRoot
	if root == "" {
		root = "/proc"
	}
	target, err := os.Readlink(filepath.Join(root, strconv.FormatInt(pid, 10), "exe"))
	if err != nil {
		return ""
	}
	return target
}
