package events

import (
	"github.com/buger/jsonparser"
	"github.com/spf13/cast"
)

// resolveJobID extracts "job_id", which may arrive as a JSON number or
// a JSON string (the spank plugin path sends it quoted). Returns ok
// false if the field is absent or neither form parses.
func resolveJobID(data []byte) (uint64, bool) {
	v, vt, _, err := jsonparser.Get(data, "job_id")
	if err != nil {
		return 0, false
	}
	switch vt {
	case jsonparser.Number:
		n, err := jsonparser.ParseInt(v)
		if err != nil {
			return 0, false
		}
		return uint64(n), true
	case jsonparser.String:
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return 0, false
		}
		n, err := cast.ToInt64E(s)
		if err != nil {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

func getInt64Field(data []byte, key string) (int64, bool) {
	v, err := jsonparser.GetInt(data, key)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getStringField(data []byte, key string) (string, bool) {
	v, err := jsonparser.GetString(data, key)
	if err != nil {
		return "", false
	}
	return v, true
}

// resolveStartTick tries the event's own "start_tick" field (sent as
// either a JSON number or a quoted string) before falling back to
// reading it from /proc.
func resolveStartTick(data []byte, procRoot string, pid int64) uint64 {
	if v, vt, _, err := jsonparser.Get(data, "start_tick"); err == nil {
		switch vt {
		case jsonparser.Number:
			if n, err := jsonparser.ParseInt(v); err == nil && n > 0 {
				return uint64(n)
			}
		case jsonparser.String:
			if s, err := jsonparser.ParseString(v); err == nil {
				if n, err := cast.ToUint64E(s); err == nil && n > 0 {
					return n
				}
			}
		}
	}
	return startTickFromProc(procRoot, pid)
}
