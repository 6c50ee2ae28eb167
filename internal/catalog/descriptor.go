// Package catalog holds the static, exhaustive table of metrics the
// sampler can collect from a tracked process, plus the handler ranges
// that group codes sharing a single kernel-file parser.
package catalog

// ValueType is the semantic type of a metric value, independent of how
// the host's measurement-set fabric represents it on the wire.
type ValueType int

const (
	ValueU8 ValueType = iota
	ValueU16
	ValueU32
	ValueU64
	ValueS16
	ValueS64
	ValueChar
	ValueCharArray
	ValueU32Array
	ValueU64Array
)

func (t ValueType) String() string {
	switch t {
	case ValueU8:
		return "u8"
	case ValueU16:
		return "u16"
	case ValueU32:
		return "u32"
	case ValueU64:
		return "u64"
	case ValueS16:
		return "s16"
	case ValueS64:
		return "s64"
	case ValueChar:
		return "char"
	case ValueCharArray:
		return "char[]"
	case ValueU32Array:
		return "u32[]"
	case ValueU64Array:
		return "u64[]"
	default:
		return "unknown"
	}
}

// Code is a dense metric identifier in [0, LastCode].
type Code int

// Codes are declared in the same order as the descriptor table below;
// the ordering is load-bearing (it is the ascending order the schema
// builder and sampler engine walk).
const (
	All Code = iota

	CmdlineLen
	Cmdline

	NOpenFiles

	IOReadB
	IOWriteB
	IONRead
	IONWrite
	IOReadDevB
	IOWriteDevB
	IOWriteCancelledB

	OOMScore
	OOMScoreAdj

	Root

	StatPID
	StatComm
	StatState
	StatPPID
	StatPgrp
	StatSession
	StatTTYNr
	StatTPgid
	StatFlags
	StatMinflt
	StatCminflt
	StatMajflt
	StatCmajflt
	StatUtime
	StatStime
	StatCutime
	StatCstime
	StatPriority
	StatNice
	StatNumThreads
	StatItrealvalue
	StatStarttime
	StatVsize
	StatRSS
	StatRsslim
	StatStartcode
	StatEndcode
	StatStartstack
	StatKstkesp
	StatKstkeip
	StatSignal
	StatBlocked
	StatSigignore
	StatSigcatch
	StatWchan
	StatNswap
	StatCnswap
	StatExitSignal
	StatProcessor
	StatRtPriority
	StatPolicy
	StatDelayacctBlkioTicks
	StatGuestTime
	StatCguestTime
	StatStartData
	StatEndData
	StatStartBrk
	StatArgStart
	StatArgEnd
	StatEnvStart
	StatEnvEnd
	StatExitCode

	StatusName
	StatusUmask
	StatusState
	StatusTgid
	StatusNgid
	StatusPid
	StatusPpid
	StatusTracerpid
	StatusUID
	StatusGID
	StatusFdsize
	StatusGroups
	StatusNstgid
	StatusNspid
	StatusNspgid
	StatusNssid
	StatusVmpeak
	StatusVmsize
	StatusVmlck
	StatusVmpin
	StatusVmhwm
	StatusVmrss
	StatusRssanon
	StatusRssfile
	StatusRssshmem
	StatusVmdata
	StatusVmstk
	StatusVmexe
	StatusVmlib
	StatusVmpte
	StatusVmpmd
	StatusVmswap
	StatusHugetlbpages
	StatusCoredumping
	StatusThreads
	StatusSigQueued
	StatusSigLimit
	StatusSigpnd
	StatusShdpnd
	StatusSigblk
	StatusSigign
	StatusSigcgt
	StatusCapinh
	StatusCapprm
	StatusCapeff
	StatusCapbnd
	StatusCapamb
	StatusNonewprivs
	StatusSeccomp
	StatusSpeculationStoreBypass
	StatusCpusAllowed
	StatusCpusAllowedList
	StatusMemsAllowed
	StatusMemsAllowedList
	StatusVoluntaryCtxtSwitches
	StatusNonvoluntaryCtxtSwitches

	Syscall

	TimerslackNS

	Wchan

	Timing

	numCodes
)

// LastCode is the highest valid Code.
const LastCode = numCodes - 1

// Array lengths for fixed-size array descriptors, named after the
// source constants that size them.
const (
	cmdlineSZ           = 4096
	rootSZ              = 4096
	statCommSZ          = 4096
	wchanSZ             = 128
	speculationSZ       = 64
	groupsSZ            = 16
	nsSZ                = 16
	cpusAllowedSZ       = 4
	memsAllowedSZ       = 128
	cpusAllowedListSZ   = 128
	memsAllowedListSZ   = 128
	syscallFieldCount   = 9
	statusUIDGIDLen     = 4
)

// Descriptor is an immutable metric catalog entry.
type Descriptor struct {
	Code     Code
	Name     string
	Unit     string
	Type     ValueType
	ArrayLen int // only meaningful when Type is one of the *Array/CharArray types
	Meta     bool
}
