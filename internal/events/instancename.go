package events

import (
	"fmt"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
)

// instanceNameMax is the hard cap on a generated instance name,
// matching the original daemon's fixed setname[512] buffer.
const instanceNameMax = 512

// buildInstanceName constructs a tracked set's instance name:
//
//	[prefix/]producer/job_id/start_time/rank/task_rank[/exe]   (rank known)
//	[prefix/]producer/job_id/start_time/pid[/exe]               (rank unknown)
//
// exe is only appended when exeSuffix is set. An over-length name is
// reported as *apperrors.NameTooLongError rather than silently
// truncated.
func buildInstanceName(prefix, producer string, jobID uint64, startString string, pid, taskRank int64, exe string, exeSuffix bool) (string, error) {
	esep, esuffix := "", ""
	if exeSuffix {
		esep, esuffix = "/", exe
	}

	var head string
	if prefix != "" {
		head = prefix + "/"
	}

	var name string
	if taskRank < 0 {
		name = fmt.Sprintf("%s%s/%d/%s/%d%s%s", head, producer, jobID, startString, pid, esep, esuffix)
	} else {
		name = fmt.Sprintf("%s%s/%d/%s/rank/%d%s%s", head, producer, jobID, startString, taskRank, esep, esuffix)
	}

	if len(name) > instanceNameMax {
		return "", &apperrors.NameTooLongError{Name: name, Max: instanceNameMax}
	}
	return name, nil
}
