package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/diag"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

// Options configures instance-name construction; see buildInstanceName.
type Options struct {
	InstancePrefix string
	ExeSuffix      bool

	// SCClkTck is the system's clock-ticks-per-second rate, used to
	// convert a start_tick into a start_time string whenever an event
	// doesn't carry its own "start" field. This conversion always
	// needs a real rate; whether the sc_clk_tck metric itself is
	// published is a separate decision the schema makes (see
	// Schema.SCClkTckIndex).
	SCClkTck int64
}

// Handler turns task_init_priv/task_exit notifications into registry
// mutations: creating, upgrading, or tearing down tracked sets.
type Handler struct {
	Registry    *registry.Registry
	Schema      *schema.Schema
	Factory     procset.SetFactory
	Producer    string
	SchemaName  string
	ComponentID uint64
	Options     Options

	// ProcRoot overrides "/proc" for tests.
	ProcRoot string

	Diag *diag.Once
}

func (h *Handler) diag() *diag.Once {
	if h.Diag != nil {
		return h.Diag
	}
	return diag.NewOnce(diag.Noop{})
}

// Dispatch unwraps the {"event","data"} envelope and routes to the
// matching handler. Unrecognized event names are silently ignored.
func (h *Handler) Dispatch(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("events: malformed envelope: %w", err)
	}
	data, _, _, err := jsonparser.Get(raw, "data")
	if err != nil {
		return fmt.Errorf("events: %q event is missing 'data': %w", env.Event, err)
	}

	switch Kind(env.Event) {
	case TaskInitPriv:
		return h.handleTaskInitPriv(ctx, data)
	case TaskExit:
		return h.handleTaskExit(ctx, data)
	default:
		return nil
	}
}

func (h *Handler) resolvePID(data []byte) (int64, bool) {
	if osPID, ok := getInt64Field(data, "os_pid"); ok {
		return osPID, true
	}
	if taskPID, ok := getInt64Field(data, "task_pid"); ok {
		return taskPID, true
	}
	return 0, false
}

func (h *Handler) handleTaskInitPriv(ctx context.Context, data []byte) error {
	jobID, haveJobID := resolveJobID(data)
	pid, havePID := h.resolvePID(data)
	if !haveJobID && !havePID {
		return errors.New("events: task_init_priv needs job_id or (os_pid|task_pid)")
	}
	if !havePID {
		return errors.New("events: task_init_priv missing os_pid/task_pid")
	}

	parentPID, havePPID := getInt64Field(data, "parent_pid")
	isThreadVal, haveIsThread := getInt64Field(data, "is_thread")
	var parent int64
	var isThread bool
	if havePPID && haveIsThread {
		parent, isThread = parentPID, isThreadVal != 0
	} else {
		parent, isThread = parentAndThread(h.ProcRoot, pid)
	}

	startTick := resolveStartTick(data, h.ProcRoot, pid)
	if startTick == 0 {
		// start-tickless pid: the process vanished before we could
		// observe it. Not an error (spec.md §4.4 step 3).
		return nil
	}

	startString, haveStart := getStringField(data, "start")
	if !haveStart {
		startString = startTimeString(h.ProcRoot, startTick, h.Options.SCClkTck)
	}

	exe, haveExe := getStringField(data, "exe")
	if !haveExe {
		exe = exeFromProc(h.ProcRoot, pid)
	}

	taskRank := int64(-1)
	if rank, ok := getInt64Field(data, "task_global_id"); ok {
		taskRank = rank
	}

	instanceName, err := buildInstanceName(h.Options.InstancePrefix, h.Producer, jobID,
		startString, pid, taskRank, exe, h.Options.ExeSuffix)
	if err != nil {
		return err
	}

	handle, err := h.Factory.Create(ctx, instanceName, h.SchemaName)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			h.diag().WarnOnce("dup-set", "duplicate set name %s, check for redundant notifiers", instanceName)
			return nil
		}
		var oom *apperrors.OutOfMemoryError
		if errors.As(err, &oom) {
			h.diag().WarnOnce("oom", "out of set memory: %s", oom.Diagnostic)
			return nil
		}
		return err
	}

	if err := h.writeIdentity(ctx, handle, jobID, taskRank, startString, startTick, parent, isThread, exe); err != nil {
		_ = h.Factory.Destroy(ctx, handle)
		return err
	}

	key := registry.Key{StartTick: startTick, PID: pid}
	rec := &registry.Record{Key: key, Handle: handle, TaskRank: taskRank}
	rec.MarkIdentityWritten()

	h.Registry.Lock()
	defer h.Registry.Unlock()

	existing, found := h.Registry.FindLocked(key)
	if !found {
		h.Registry.InsertLocked(rec)
		return nil
	}

	// Dedup/upgrade logic (spec.md §4.4 step 8): a newcomer with a
	// known rank either confirms the existing set (same rank, drop
	// newcomer) or upgrades it (different rank, swap handles). A
	// newcomer with an unknown rank never displaces an existing set.
	switch {
	case taskRank != -1 && existing.TaskRank == taskRank:
		_ = h.Factory.Destroy(ctx, handle)
	case taskRank != -1:
		_ = h.Factory.Destroy(ctx, existing.Handle)
		existing.Handle = handle
		existing.TaskRank = taskRank
	default:
		_ = h.Factory.Destroy(ctx, handle)
	}
	return nil
}

func (h *Handler) writeIdentity(ctx context.Context, handle procset.Handle, jobID uint64, taskRank int64,
	startString string, startTick uint64, parent int64, isThread bool, exe string) error {
	txn, err := h.Factory.Begin(ctx, handle)
	if err != nil {
		return err
	}

	if h.Schema.JobIDIndex != 0 {
		txn.Set(h.Schema.JobIDIndex, procset.Value{U64: jobID})
	}
	if h.Schema.ComponentIDIndex != 0 {
		txn.Set(h.Schema.ComponentIDIndex, procset.Value{U64: h.ComponentID})
	}
	txn.Set(h.Schema.TaskRankIndex, procset.Value{S64: taskRank})
	txn.Set(h.Schema.StartTimeIndex, procset.Value{Str: startString})
	txn.Set(h.Schema.StartTickIndex, procset.Value{U64: startTick})
	var isThreadU8 byte
	if isThread {
		isThreadU8 = 1
	}
	txn.Set(h.Schema.IsThreadIndex, procset.Value{Char: isThreadU8})
	txn.Set(h.Schema.ParentIndex, procset.Value{S64: parent})
	txn.Set(h.Schema.ExeIndex, procset.Value{Str: exe})
	if h.Schema.SCClkTckIndex != 0 {
		txn.Set(h.Schema.SCClkTckIndex, procset.Value{S64: h.Options.SCClkTck})
	}

	return txn.End()
}

func (h *Handler) handleTaskExit(ctx context.Context, data []byte) error {
	pid, ok := h.resolvePID(data)
	if !ok {
		return errors.New("events: task_exit missing os_pid/task_pid")
	}
	startTick := resolveStartTick(data, h.ProcRoot, pid)
	if startTick == 0 {
		return errors.New("events: task_exit could not resolve start_tick")
	}

	key := registry.Key{StartTick: startTick, PID: pid}
	rec, found := h.Registry.Remove(key)
	if !found {
		// Exit of a process we never caught the start of.
		return nil
	}
	return h.Factory.Destroy(ctx, rec.Handle)
}
