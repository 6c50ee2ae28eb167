package catalog

import (
	"sort"
	"sync"
)

// HandlerID identifies the sampler-engine handler responsible for a
// code or a contiguous range of codes.
type HandlerID int

const (
	HandlerCmdline HandlerID = iota
	HandlerNOpenFiles
	HandlerIO
	HandlerOOMScore
	HandlerOOMScoreAdj
	HandlerRoot
	HandlerStat
	HandlerStatus
	HandlerSyscall
	HandlerTimerslackNS
	HandlerWchan
	HandlerTiming
)

func (h HandlerID) String() string {
	switch h {
	case HandlerCmdline:
		return "cmdline"
	case HandlerNOpenFiles:
		return "n_open_files"
	case HandlerIO:
		return "io"
	case HandlerOOMScore:
		return "oom_score"
	case HandlerOOMScoreAdj:
		return "oom_score_adj"
	case HandlerRoot:
		return "root"
	case HandlerStat:
		return "stat"
	case HandlerStatus:
		return "status"
	case HandlerSyscall:
		return "syscall"
	case HandlerTimerslackNS:
		return "timerslack_ns"
	case HandlerWchan:
		return "wchan"
	case HandlerTiming:
		return "timing"
	default:
		return "unknown"
	}
}

// metricRange binds a contiguous [First, Last] code range to the single
// handler that services every code in it, so enabling any metric in the
// range activates the handler exactly once.
type metricRange struct {
	First, Last Code
	Handler     HandlerID
}

var ranges = []metricRange{
	{CmdlineLen, Cmdline, HandlerCmdline},
	{IOReadB, IOWriteCancelledB, HandlerIO},
	{StatPID, StatExitCode, HandlerStat},
	{StatusName, StatusNonvoluntaryCtxtSwitches, HandlerStatus},
}

// singletons maps codes outside any range to their own handler.
var singletons = map[Code]HandlerID{
	NOpenFiles:   HandlerNOpenFiles,
	OOMScore:     HandlerOOMScore,
	OOMScoreAdj:  HandlerOOMScoreAdj,
	Root:         HandlerRoot,
	Syscall:      HandlerSyscall,
	TimerslackNS: HandlerTimerslackNS,
	Wchan:        HandlerWchan,
	Timing:       HandlerTiming,
}

// HandlerFor returns the handler responsible for code, and whether one
// exists (All has none).
func HandlerFor(code Code) (HandlerID, bool) {
	for _, r := range ranges {
		if code >= r.First && code <= r.Last {
			return r.Handler, true
		}
	}
	h, ok := singletons[code]
	return h, ok
}

// descriptors is the dense, code-indexed catalog. Declared in the same
// order as the Code constants; index i describes Code(i).
var descriptors = []Descriptor{
	{All, "ALL", "", ValueU8, 0, false},

	{CmdlineLen, "cmdline_len", "", ValueU16, 0, true},
	{Cmdline, "cmdline", "", ValueCharArray, cmdlineSZ, true},

	{NOpenFiles, "n_open_files", "", ValueU64, 0, false},

	{IOReadB, "io_read_b", "B", ValueU64, 0, false},
	{IOWriteB, "io_write_b", "B", ValueU64, 0, false},
	{IONRead, "io_n_read", "", ValueU64, 0, false},
	{IONWrite, "io_n_write", "", ValueU64, 0, false},
	{IOReadDevB, "io_read_dev_b", "B", ValueU64, 0, false},
	{IOWriteDevB, "io_write_dev_b", "B", ValueU64, 0, false},
	{IOWriteCancelledB, "io_write_cancelled_b", "B", ValueU64, 0, false},

	{OOMScore, "oom_score", "", ValueU64, 0, false},
	// oom_score_adj: the original catalog declares this U64, but the
	// value is written through a signed setter. Stored signed here,
	// preserving the bit pattern on write (see procfile/scalar.go).
	{OOMScoreAdj, "oom_score_adj", "", ValueS16, 0, false},

	{Root, "root", "", ValueCharArray, rootSZ, true},

	{StatPID, "stat_pid", "", ValueU64, 0, false},
	{StatComm, "stat_comm", "", ValueCharArray, statCommSZ, true},
	{StatState, "stat_state", "", ValueChar, 0, false},
	{StatPPID, "stat_ppid", "", ValueU64, 0, false},
	{StatPgrp, "stat_pgrp", "", ValueU64, 0, false},
	{StatSession, "stat_session", "", ValueU64, 0, false},
	{StatTTYNr, "stat_tty_nr", "", ValueU64, 0, false},
	{StatTPgid, "stat_tpgid", "", ValueU64, 0, false},
	{StatFlags, "stat_flags", "", ValueU64, 0, false},
	{StatMinflt, "stat_minflt", "", ValueU64, 0, false},
	{StatCminflt, "stat_cminflt", "", ValueU64, 0, false},
	{StatMajflt, "stat_majflt", "", ValueU64, 0, false},
	{StatCmajflt, "stat_cmajflt", "", ValueU64, 0, false},
	{StatUtime, "stat_utime", "ticks", ValueU64, 0, false},
	{StatStime, "stat_stime", "ticks", ValueU64, 0, false},
	{StatCutime, "stat_cutime", "ticks", ValueU64, 0, false},
	{StatCstime, "stat_cstime", "ticks", ValueU64, 0, false},
	{StatPriority, "stat_priority", "", ValueU64, 0, false},
	{StatNice, "stat_nice", "", ValueU64, 0, false},
	{StatNumThreads, "stat_num_threads", "", ValueU64, 0, false},
	{StatItrealvalue, "stat_itrealvalue", "ticks", ValueU64, 0, false},
	{StatStarttime, "stat_starttime", "ticks", ValueU64, 0, false},
	{StatVsize, "stat_vsize", "B", ValueU64, 0, false},
	{StatRSS, "stat_rss", "PG", ValueU64, 0, false},
	{StatRsslim, "stat_rsslim", "B", ValueU64, 0, false},
	{StatStartcode, "stat_startcode", "PTR", ValueU64, 0, false},
	{StatEndcode, "stat_endcode", "PTR", ValueU64, 0, false},
	{StatStartstack, "stat_startstack", "PTR", ValueU64, 0, false},
	{StatKstkesp, "stat_kstkesp", "PTR", ValueU64, 0, false},
	{StatKstkeip, "stat_kstkeip", "PTR", ValueU64, 0, false},
	{StatSignal, "stat_signal", "", ValueU64, 0, false},
	{StatBlocked, "stat_blocked", "", ValueU64, 0, false},
	{StatSigignore, "stat_sigignore", "", ValueU64, 0, false},
	{StatSigcatch, "stat_sigcatch", "", ValueU64, 0, false},
	{StatWchan, "stat_wchan", "PTR", ValueU64, 0, false},
	{StatNswap, "stat_nswap", "PG", ValueU64, 0, false},
	{StatCnswap, "stat_cnswap", "PG", ValueU64, 0, false},
	{StatExitSignal, "stat_exit_signal", "", ValueU64, 0, false},
	{StatProcessor, "stat_processor", "", ValueU64, 0, false},
	{StatRtPriority, "stat_rt_priority", "", ValueU64, 0, false},
	{StatPolicy, "stat_policy", "", ValueU64, 0, false},
	{StatDelayacctBlkioTicks, "stat_delayacct_blkio_ticks", "ticks", ValueU64, 0, false},
	{StatGuestTime, "stat_guest_time", "ticks", ValueU64, 0, false},
	{StatCguestTime, "stat_cguest_time", "ticks", ValueU64, 0, false},
	{StatStartData, "stat_start_data", "PTR", ValueU64, 0, false},
	{StatEndData, "stat_end_data", "PTR", ValueU64, 0, false},
	{StatStartBrk, "stat_start_brk", "PTR", ValueU64, 0, false},
	{StatArgStart, "stat_arg_start", "PTR", ValueU64, 0, false},
	{StatArgEnd, "stat_arg_end", "PTR", ValueU64, 0, false},
	{StatEnvStart, "stat_env_start", "PTR", ValueU64, 0, false},
	{StatEnvEnd, "stat_env_end", "PTR", ValueU64, 0, false},
	{StatExitCode, "stat_exit_code", "", ValueU64, 0, false},

	{StatusName, "status_name", "", ValueCharArray, statCommSZ, true},
	{StatusUmask, "status_umask", "", ValueU32, 0, false},
	{StatusState, "status_state", "", ValueChar, 0, false},
	{StatusTgid, "status_tgid", "", ValueU64, 0, false},
	{StatusNgid, "status_ngid", "", ValueU64, 0, false},
	{StatusPid, "status_pid", "", ValueU64, 0, false},
	{StatusPpid, "status_ppid", "", ValueU64, 0, false},
	{StatusTracerpid, "status_tracerpid", "", ValueU64, 0, false},
	{StatusUID, "status_uid", "", ValueU64Array, statusUIDGIDLen, false},
	{StatusGID, "status_gid", "", ValueU64Array, statusUIDGIDLen, false},
	{StatusFdsize, "status_fdsize", "", ValueU64, 0, false},
	{StatusGroups, "status_groups", "", ValueU64Array, groupsSZ, false},
	{StatusNstgid, "status_nstgid", "", ValueU64Array, nsSZ, false},
	{StatusNspid, "status_nspid", "", ValueU64Array, nsSZ, false},
	{StatusNspgid, "status_nspgid", "", ValueU64Array, nsSZ, false},
	{StatusNssid, "status_nssid", "", ValueU64Array, nsSZ, false},
	{StatusVmpeak, "status_vmpeak", "kB", ValueU64, 0, false},
	{StatusVmsize, "status_vmsize", "kB", ValueU64, 0, false},
	{StatusVmlck, "status_vmlck", "kB", ValueU64, 0, false},
	{StatusVmpin, "status_vmpin", "kB", ValueU64, 0, false},
	{StatusVmhwm, "status_vmhwm", "kB", ValueU64, 0, false},
	{StatusVmrss, "status_vmrss", "kB", ValueU64, 0, false},
	{StatusRssanon, "status_rssanon", "kB", ValueU64, 0, false},
	{StatusRssfile, "status_rssfile", "kB", ValueU64, 0, false},
	{StatusRssshmem, "status_rssshmem", "kB", ValueU64, 0, false},
	{StatusVmdata, "status_vmdata", "kB", ValueU64, 0, false},
	{StatusVmstk, "status_vmstk", "kB", ValueU64, 0, false},
	{StatusVmexe, "status_vmexe", "kB", ValueU64, 0, false},
	{StatusVmlib, "status_vmlib", "kB", ValueU64, 0, false},
	{StatusVmpte, "status_vmpte", "kB", ValueU64, 0, false},
	{StatusVmpmd, "status_vmpmd", "kB", ValueU64, 0, false},
	{StatusVmswap, "status_vmswap", "kB", ValueU64, 0, false},
	{StatusHugetlbpages, "status_hugetlbpages", "kB", ValueU64, 0, false},
	{StatusCoredumping, "status_coredumping", "bool", ValueU8, 0, false},
	{StatusThreads, "status_threads", "", ValueU64, 0, false},
	{StatusSigQueued, "status_sig_queued", "", ValueU64, 0, false},
	{StatusSigLimit, "status_sig_limit", "", ValueU64, 0, false},
	{StatusSigpnd, "status_sigpnd", "", ValueU64, 0, false},
	{StatusShdpnd, "status_shdpnd", "", ValueU64, 0, false},
	{StatusSigblk, "status_sigblk", "", ValueU64, 0, false},
	{StatusSigign, "status_sigign", "", ValueU64, 0, false},
	{StatusSigcgt, "status_sigcgt", "", ValueU64, 0, false},
	{StatusCapinh, "status_capinh", "", ValueU64, 0, false},
	{StatusCapprm, "status_capprm", "", ValueU64, 0, false},
	{StatusCapeff, "status_capeff", "", ValueU64, 0, false},
	{StatusCapbnd, "status_capbnd", "", ValueU64, 0, false},
	{StatusCapamb, "status_capamb", "", ValueU64, 0, false},
	{StatusNonewprivs, "status_nonewprivs", "", ValueU64, 0, false},
	{StatusSeccomp, "status_seccomp", "", ValueU64, 0, false},
	{StatusSpeculationStoreBypass, "status_speculation_store_bypass", "", ValueCharArray, speculationSZ, false},
	{StatusCpusAllowed, "status_cpus_allowed", "", ValueU32Array, cpusAllowedSZ, false},
	{StatusCpusAllowedList, "status_cpus_allowed_list", "", ValueCharArray, cpusAllowedListSZ, false},
	{StatusMemsAllowed, "status_mems_allowed", "", ValueU32Array, memsAllowedSZ, false},
	{StatusMemsAllowedList, "status_mems_allowed_list", "", ValueCharArray, memsAllowedListSZ, false},
	{StatusVoluntaryCtxtSwitches, "status_voluntary_ctxt_switches", "", ValueU64, 0, false},
	{StatusNonvoluntaryCtxtSwitches, "status_nonvoluntary_ctxt_switches", "", ValueU64, 0, false},

	{Syscall, "syscall", "", ValueU64Array, syscallFieldCount, false},

	{TimerslackNS, "timerslack_ns", "ns", ValueU64, 0, false},

	{Wchan, "wchan", "", ValueCharArray, wchanSZ, false},
	{Timing, "sample_us", "", ValueU64, 0, false},
}

func init() {
	if len(descriptors) != int(numCodes) {
		panic("catalog: descriptor table out of sync with Code enumeration")
	}
	for i, d := range descriptors {
		if d.Code != Code(i) {
			panic("catalog: descriptor table entry out of order")
		}
	}
}

// Descriptors returns the full, code-ordered descriptor table.
func Descriptors() []Descriptor {
	return descriptors
}

// Lookup returns the descriptor for code, if it exists.
func Lookup(code Code) (Descriptor, bool) {
	if code < 0 || int(code) >= len(descriptors) {
		return Descriptor{}, false
	}
	return descriptors[code], true
}

var (
	nameIndexOnce sync.Once
	nameIndex     []int // permutation of descriptor indices, sorted by Name
)

func buildNameIndex() {
	nameIndex = make([]int, len(descriptors))
	for i := range descriptors {
		nameIndex[i] = i
	}
	sort.Slice(nameIndex, func(i, j int) bool {
		return descriptors[nameIndex[i]].Name < descriptors[nameIndex[j]].Name
	})
}

// LookupByName resolves a metric by its printable name in O(log n),
// building the lexicographic index lazily on first use.
func LookupByName(name string) (Descriptor, bool) {
	nameIndexOnce.Do(buildNameIndex)
	lo, hi := 0, len(nameIndex)
	for lo < hi {
		mid := (lo + hi) / 2
		d := descriptors[nameIndex[mid]]
		switch {
		case d.Name == name:
			return d, true
		case d.Name < name:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return Descriptor{}, false
}
