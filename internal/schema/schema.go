// Package schema builds the host-owned schema object for a sampler
// instance: the fixed identity fields plus whichever catalog metrics
// the user selected, in the exact order the host must add them.
package schema

import (
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
)

// Options are the configuration flags that affect schema shape.
type Options struct {
	SCClkTck       bool
	ExeSuffix      bool
	InstancePrefix string
	ArgvSep        string
}

// HostField is a host-mandated identity field (job_id, component_id)
// whose concrete representation belongs to the host's own schema
// fabric; this module only needs its name to reserve a slot in order.
type HostField struct {
	Name string
}

// Field is one schema slot, in the order it was added.
type Field struct {
	Name     string
	Unit     string
	Type     catalog.ValueType
	ArrayLen int
	Meta     bool
}

// Schema is the ordered field list plus the per-code index the
// sampler engine consults at write time.
type Schema struct {
	Fields  []Field
	Indices map[catalog.Code]int // 0 means absent (the "may-set" idiom)

	// HostFieldIndices gives the 1-based transaction index for each
	// host-mandated field, in the order passed to Build.
	HostFieldIndices []int

	// JobIDIndex and ComponentIDIndex are the host-mandated fields by
	// name, 0 if the caller didn't pass one of that name to Build.
	JobIDIndex       int
	ComponentIDIndex int

	// Fixed identity field indices, always 1-based and always present
	// (every tracked set carries these; see invariant I4).
	TaskRankIndex  int
	StartTimeIndex int
	StartTickIndex int
	IsThreadIndex  int
	ParentIndex    int
	ExeIndex       int

	// SCClkTckIndex is 0 when the sc_clk_tck option is disabled.
	SCClkTckIndex int
}

// Index returns the schema index for code, and whether it is enabled.
// Callers should skip writes when ok is false, exactly mirroring the
// "write only if index > 0" idiom.
func (s *Schema) Index(code catalog.Code) (int, bool) {
	idx, ok := s.Indices[code]
	if !ok || idx == 0 {
		return 0, false
	}
	return idx, true
}

const (
	fieldTaskRank  = "task_rank"
	fieldStartTime = "start_time"
	fieldStartTick = "start_tick"
	fieldIsThread  = "is_thread"
	fieldParent    = "parent"
	fieldExe       = "exe"
	fieldSCClkTck  = "sc_clk_tck"

	startTimeFieldLen = 20
	exeFieldLen       = 512
)

// Build assembles a Schema from the caller-selected codes, the fixed
// identity fields, and any host-mandated fields, adding them in the
// exact order the host must see: host fields, then identity fields,
// then each enabled catalog metric in ascending code order.
func Build(enabled map[catalog.Code]bool, opts Options, hostFields []HostField) *Schema {
	s := &Schema{Indices: make(map[catalog.Code]int)}

	add := func(f Field) {
		s.Fields = append(s.Fields, f)
	}

	for _, hf := range hostFields {
		add(Field{Name: hf.Name, Type: catalog.ValueU64, Meta: true})
		idx := len(s.Fields)
		s.HostFieldIndices = append(s.HostFieldIndices, idx)
		switch hf.Name {
		case "job_id":
			s.JobIDIndex = idx
		case "component_id":
			s.ComponentIDIndex = idx
		}
	}

	add(Field{Name: fieldTaskRank, Type: catalog.ValueS64, Meta: true})
	s.TaskRankIndex = len(s.Fields)
	add(Field{Name: fieldStartTime, Type: catalog.ValueCharArray, ArrayLen: startTimeFieldLen, Meta: true})
	s.StartTimeIndex = len(s.Fields)
	add(Field{Name: fieldStartTick, Type: catalog.ValueU64, Meta: true})
	s.StartTickIndex = len(s.Fields)
	add(Field{Name: fieldIsThread, Type: catalog.ValueU8, Meta: true})
	s.IsThreadIndex = len(s.Fields)
	add(Field{Name: fieldParent, Type: catalog.ValueS64, Meta: true})
	s.ParentIndex = len(s.Fields)
	add(Field{Name: fieldExe, Type: catalog.ValueCharArray, ArrayLen: exeFieldLen, Meta: true})
	s.ExeIndex = len(s.Fields)
	if opts.SCClkTck {
		add(Field{Name: fieldSCClkTck, Type: catalog.ValueS64, Meta: true})
		s.SCClkTckIndex = len(s.Fields)
	}

	for _, d := range catalog.Descriptors() {
		if d.Code == catalog.All || !enabled[d.Code] {
			continue
		}
		add(Field{Name: d.Name, Unit: d.Unit, Type: d.Type, ArrayLen: d.ArrayLen, Meta: d.Meta})
		s.Indices[d.Code] = len(s.Fields) - 1 + 1 // 1-based: index 0 is reserved for "absent"
	}

	return s
}
