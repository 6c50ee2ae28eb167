//go:build ebpf

package ebpfsrc

import (
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
)

// TracepointSpec describes one native eBPF program to load and the
// kernel tracepoint it attaches to.
type TracepointSpec struct {
	Name       string
	ObjectFile string
	Program    string // program name inside the collection
	Group      string // tracepoint group, e.g. "sched"
	Event      string // tracepoint event, e.g. "sched_process_exec"
}

// Tracepoints are the two lifecycle sources this source understands.
var Tracepoints = []TracepointSpec{
	{Name: "task_init", ObjectFile: "eventsource/ebpfsrc/bpf/task_lifecycle.o",
		Program: "on_process_exec", Group: "sched", Event: "sched_process_exec"},
	{Name: "task_exit", ObjectFile: "eventsource/ebpfsrc/bpf/task_lifecycle.o",
		Program: "on_process_exit", Group: "sched", Event: "sched_process_exit"},
}

// LoadedProgram is a running tracepoint program plus its ring buffer
// map, ready for Source to drain.
type LoadedProgram struct {
	Spec       TracepointSpec
	Collection *ebpf.Collection
	Link       link.Link
}

func (p *LoadedProgram) Close() error {
	if p.Link != nil {
		p.Link.Close()
	}
	if p.Collection != nil {
		p.Collection.Close()
	}
	return nil
}

// LoadError represents a tracepoint program load failure.
type LoadError struct {
	Program string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ebpfsrc: program %q: %v", e.Program, e.Err)
}

// Loader loads and attaches the lifecycle tracepoint programs.
type Loader struct {
	btf *BTFInfo
}

// NewLoader probes BTF/CO-RE availability up front.
func NewLoader() *Loader {
	return &Loader{btf: DetectBTF()}
}

// CanLoad reports whether this kernel supports CO-RE tracepoint
// loading at all.
func (l *Loader) CanLoad() bool {
	return l.btf.Available && l.btf.CORESupport
}

// TryLoad loads spec's object file, attaches its program to the named
// tracepoint, and returns the running program.
func (l *Loader) TryLoad(spec TracepointSpec) (*LoadedProgram, error) {
	if !l.CanLoad() {
		return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("BTF/CO-RE not available (kernel %s)", l.btf.KernelVersion)}
	}

	collSpec, err := ebpf.LoadCollectionSpec(spec.ObjectFile)
	if err != nil {
		return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("load spec: %w", err)}
	}

	coll, err := ebpf.NewCollection(collSpec)
	if err != nil {
		return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("load collection: %w", err)}
	}

	prog := coll.Programs[spec.Program]
	if prog == nil {
		coll.Close()
		return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("program %q not found in collection", spec.Program)}
	}

	tp, err := link.Tracepoint(spec.Group, spec.Event, prog, nil)
	if err != nil {
		coll.Close()
		return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("attach tracepoint %s/%s: %w", spec.Group, spec.Event, err)}
	}

	return &LoadedProgram{Spec: spec, Collection: coll, Link: tp}, nil
}
