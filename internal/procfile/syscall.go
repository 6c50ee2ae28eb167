package procfile

import (
	"strconv"
	"strings"

	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// syscallFieldCount is the fixed width of /proc/<pid>/syscall's
// numeric form: syscall number, 6 argument registers, stack pointer,
// program counter.
const syscallFieldCount = 9

// parseSyscallFields tokenizes one /proc/<pid>/syscall line into up to
// 9 fields: field 0 is signed decimal (the syscall number, or -1 while
// blocked not in a syscall) stored as its uint64 bit pattern, fields
// 1..8 are hex. It returns however many fields it successfully parsed
// in order, matching the kernel's single combined scan rather than a
// fixed-width form keyed off the leading value.
func parseSyscallFields(line string) []uint64 {
	toks := strings.Fields(line)
	out := make([]uint64, 0, syscallFieldCount)
	for i, tok := range toks {
		if i >= syscallFieldCount {
			break
		}
		var v uint64
		var err error
		if i == 0 {
			sv, serr := strconv.ParseInt(tok, 10, 64)
			v, err = uint64(sv), serr
		} else {
			v, err = strconv.ParseUint(strings.TrimPrefix(tok, "0x"), 16, 64)
		}
		if err != nil {
			break
		}
		out = append(out, v)
	}
	return out
}

// SyscallHandler parses /proc/<pid>/syscall into the 9-slot syscall
// array. The line "running" means the task isn't blocked in a
// syscall; all 9 fields are zeroed (B4). Otherwise as many of the 9
// fields as successfully parse are kept, and the remainder are
// zero-filled.
func SyscallHandler(c *Context) error {
	line, err := readScalarLine(c.Path("syscall"))
	if err != nil {
		return err
	}

	fields := make([]uint64, syscallFieldCount)
	if !strings.HasPrefix(line, "running") {
		copy(fields, parseSyscallFields(line))
	}

	c.setU64Array(catalog.Syscall, fields)
	return nil
}
