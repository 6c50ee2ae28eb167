package procfile

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// statusKind is the tagged-variant parser a status-line key dispatches
// to, per Design Note "polymorphic status parsers": {Dec, DecArray,
// Hex, Oct, Char, SigQ, Str, Bitmap}.
type statusKind int

const (
	kindDec statusKind = iota
	kindDecArray
	kindHex
	kindOct
	kindChar
	kindSigQ
	kindStr
	kindBitmap
)

type statusEntry struct {
	Key  string
	Code catalog.Code
	Kind statusKind
}

// statusTable dispatches each /proc/<pid>/status key to its code and
// parser, following linux/fs/proc/array.c's field grouping.
var statusTable = []statusEntry{
	{"Name", catalog.StatusName, kindStr},
	{"Umask", catalog.StatusUmask, kindOct},
	{"State", catalog.StatusState, kindChar},
	{"Tgid", catalog.StatusTgid, kindDec},
	{"Ngid", catalog.StatusNgid, kindDec},
	{"Pid", catalog.StatusPid, kindDec},
	{"PPid", catalog.StatusPpid, kindDec},
	{"TracerPid", catalog.StatusTracerpid, kindDec},
	{"Uid", catalog.StatusUID, kindDecArray},
	{"Gid", catalog.StatusGID, kindDecArray},
	{"FDSize", catalog.StatusFdsize, kindDec},
	{"Groups", catalog.StatusGroups, kindDecArray},
	{"NStgid", catalog.StatusNstgid, kindDecArray},
	{"NSpid", catalog.StatusNspid, kindDecArray},
	{"NSpgid", catalog.StatusNspgid, kindDecArray},
	{"NSsid", catalog.StatusNssid, kindDecArray},

	{"VmPeak", catalog.StatusVmpeak, kindDec},
	{"VmSize", catalog.StatusVmsize, kindDec},
	{"VmLck", catalog.StatusVmlck, kindDec},
	{"VmPin", catalog.StatusVmpin, kindDec},
	{"VmHWM", catalog.StatusVmhwm, kindDec},
	{"VmRSS", catalog.StatusVmrss, kindDec},
	{"RssAnon", catalog.StatusRssanon, kindDec},
	{"RssFile", catalog.StatusRssfile, kindDec},
	{"RssShmem", catalog.StatusRssshmem, kindDec},
	{"VmData", catalog.StatusVmdata, kindDec},
	{"VmStk", catalog.StatusVmstk, kindDec},
	{"VmExe", catalog.StatusVmexe, kindDec},
	{"VmLib", catalog.StatusVmlib, kindDec},
	{"VmPTE", catalog.StatusVmpte, kindDec},
	{"VmPMD", catalog.StatusVmpmd, kindDec},
	{"VmSwap", catalog.StatusVmswap, kindDec},
	{"HugetlbPages", catalog.StatusHugetlbpages, kindDec},

	{"CoreDumping", catalog.StatusCoredumping, kindDec},

	{"Threads", catalog.StatusThreads, kindDec},
	{"SigQ", catalog.StatusSigQueued, kindSigQ},
	{"SigPnd", catalog.StatusSigpnd, kindHex},
	{"ShdPnd", catalog.StatusShdpnd, kindHex},
	{"SigBlk", catalog.StatusSigblk, kindHex},
	{"SigIgn", catalog.StatusSigign, kindHex},
	{"SigCgt", catalog.StatusSigcgt, kindHex},

	{"CapInh", catalog.StatusCapinh, kindHex},
	{"CapPrm", catalog.StatusCapprm, kindHex},
	{"CapEff", catalog.StatusCapeff, kindHex},
	{"CapBnd", catalog.StatusCapbnd, kindHex},
	{"CapAmb", catalog.StatusCapamb, kindHex},

	{"NoNewPrivs", catalog.StatusNonewprivs, kindDec},
	{"Seccomp", catalog.StatusSeccomp, kindDec},
	{"Speculation_Store_Bypass", catalog.StatusSpeculationStoreBypass, kindStr},

	{"Cpus_allowed", catalog.StatusCpusAllowed, kindBitmap},
	{"Cpus_allowed_list", catalog.StatusCpusAllowedList, kindStr},

	{"Mems_allowed", catalog.StatusMemsAllowed, kindBitmap},
	{"Mems_allowed_list", catalog.StatusMemsAllowedList, kindStr},

	{"voluntary_ctxt_switches", catalog.StatusVoluntaryCtxtSwitches, kindDec},
	{"nonvoluntary_ctxt_switches", catalog.StatusNonvoluntaryCtxtSwitches, kindDec},
}

var statusByKey map[string]statusEntry

func init() {
	statusByKey = make(map[string]statusEntry, len(statusTable))
	for _, e := range statusTable {
		statusByKey[e.Key] = e
	}
}

// StatusHandler parses /proc/<pid>/status line by line, dispatching
// each recognized key to its typed parser. SigQ is always parsed
// (even if disabled) because it feeds two independent codes.
func StatusHandler(c *Context) error {
	f, err := os.Open(c.Path("status"))
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 4096)
	for sc.Scan() {
		line := sc.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := line[:colon]
		entry, ok := statusByKey[key]
		if !ok {
			continue
		}
		value := strings.TrimSpace(line[colon+1:])

		_, enabled := c.index(entry.Code)
		if !enabled && entry.Kind != kindSigQ {
			continue
		}
		applyStatusValue(c, entry, value)
	}
	return sc.Err()
}

func applyStatusValue(c *Context, e statusEntry, value string) {
	switch e.Kind {
	case kindDec:
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			c.setU64(e.Code, v)
		}
	case kindHex:
		if v, err := strconv.ParseUint(value, 16, 64); err == nil {
			c.setU64(e.Code, v)
		}
	case kindOct:
		if v, err := strconv.ParseUint(value, 8, 32); err == nil {
			c.setU64(e.Code, v)
		}
	case kindChar:
		if len(value) > 0 {
			c.setChar(e.Code, value[0])
		}
	case kindStr:
		c.setStr(e.Code, value)
	case kindSigQ:
		parts := strings.SplitN(value, "/", 2)
		if len(parts) != 2 {
			return
		}
		q, errQ := strconv.ParseUint(parts[0], 10, 64)
		l, errL := strconv.ParseUint(parts[1], 10, 64)
		if errQ == nil {
			c.setU64(catalog.StatusSigQueued, q)
		}
		if errL == nil {
			c.setU64(catalog.StatusSigLimit, l)
		}
	case kindDecArray:
		d, ok := catalog.Lookup(e.Code)
		if !ok {
			return
		}
		vals := make([]uint64, 0, d.ArrayLen)
		for _, tok := range strings.Fields(value) {
			v, err := strconv.ParseUint(tok, 10, 64)
			if err != nil {
				break
			}
			vals = append(vals, v)
			if len(vals) == d.ArrayLen {
				break
			}
		}
		c.setU64Array(e.Code, vals)
	case kindBitmap:
		d, ok := catalog.Lookup(e.Code)
		if !ok {
			return
		}
		target := make([]uint32, d.ArrayLen)
		ParseBitmap(value, target)
		c.setU32Array(e.Code, target)
	}
}
