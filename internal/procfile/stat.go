package procfile

import (
	"os"
	"strconv"
	"strings"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// statFieldCodes is the field-by-field code list starting at
// stat_ppid (field 4, the first numeric field after pid/comm/state), in the exact
// order they appear in /proc/<pid>/stat.
var statFieldCodes = []catalog.Code{
	catalog.StatPPID, catalog.StatPgrp, catalog.StatSession, catalog.StatTTYNr,
	catalog.StatTPgid, catalog.StatFlags, catalog.StatMinflt, catalog.StatCminflt,
	catalog.StatMajflt, catalog.StatCmajflt, catalog.StatUtime, catalog.StatStime,
	catalog.StatCutime, catalog.StatCstime, catalog.StatPriority, catalog.StatNice,
	catalog.StatNumThreads, catalog.StatItrealvalue, catalog.StatStarttime,
	catalog.StatVsize, catalog.StatRSS, catalog.StatRsslim, catalog.StatStartcode,
	catalog.StatEndcode, catalog.StatStartstack, catalog.StatKstkesp, catalog.StatKstkeip,
	catalog.StatSignal, catalog.StatBlocked, catalog.StatSigignore, catalog.StatSigcatch,
	catalog.StatWchan, catalog.StatNswap, catalog.StatCnswap, catalog.StatExitSignal,
	catalog.StatProcessor, catalog.StatRtPriority, catalog.StatPolicy,
	catalog.StatDelayacctBlkioTicks, catalog.StatGuestTime, catalog.StatCguestTime,
	catalog.StatStartData, catalog.StatEndData, catalog.StatStartBrk,
	catalog.StatArgStart, catalog.StatArgEnd, catalog.StatEnvStart, catalog.StatEnvEnd,
	catalog.StatExitCode,
}

// ParseStat parses one /proc/<pid>/stat line: "pid (comm) state
// field4 field5 ...". comm is taken between the first '(' and the
// *last* ')' so a comm containing ')' characters (B1) still parses
// correctly. Returns the parsed pid, comm, state, and the remaining
// unsigned decimal fields in order.
func ParseStat(line string) (pid int64, comm string, state byte, fields []uint64, err error) {
	line = strings.TrimRight(line, "\n")
	openParen := strings.IndexByte(line, '(')
	closeParen := strings.LastIndexByte(line, ')')
	if openParen < 0 || closeParen < 0 || closeParen < openParen {
		return 0, "", 0, nil, &apperrors.MalformedError{Reason: "missing comm parentheses"}
	}
	pidStr := strings.TrimSpace(line[:openParen])
	pid, perr := strconv.ParseInt(pidStr, 10, 64)
	if perr != nil {
		return 0, "", 0, nil, &apperrors.MalformedError{Reason: "bad pid field: " + perr.Error()}
	}
	comm = line[openParen+1 : closeParen]

	rest := strings.TrimSpace(line[closeParen+1:])
	restFields := strings.Fields(rest)
	if len(restFields) < 1 {
		return 0, "", 0, nil, &apperrors.MalformedError{Reason: "missing state field"}
	}
	if len(restFields[0]) != 1 {
		return 0, "", 0, nil, &apperrors.MalformedError{Reason: "state field not a single character"}
	}
	state = restFields[0][0]

	fields = make([]uint64, 0, len(restFields)-1)
	for _, tok := range restFields[1:] {
		v, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return 0, "", 0, nil, &apperrors.MalformedError{Reason: "non-decimal field: " + err.Error()}
		}
		fields = append(fields, v)
	}
	return pid, comm, state, fields, nil
}

// StatHandler parses /proc/<pid>/stat and writes stat_pid, stat_comm,
// stat_state, then the 49 remaining fields in order.
func StatHandler(c *Context) error {
	data, err := os.ReadFile(c.Path("stat"))
	if err != nil {
		return err
	}
	pid, comm, state, fields, err := ParseStat(string(data))
	if err != nil {
		return err
	}
	if len(fields) < len(statFieldCodes) {
		return &apperrors.MalformedError{Path: c.Path("stat"), Reason: "too few fields"}
	}

	c.setU64(catalog.StatPID, uint64(pid))
	c.setStr(catalog.StatComm, comm)
	c.setChar(catalog.StatState, state)
	for i, code := range statFieldCodes {
		c.setU64(code, fields[i])
	}
	return nil
}
