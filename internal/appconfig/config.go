// Package appconfig turns the two configuration surfaces a sampler
// instance accepts — a flat key=value attribute list, or a cfg_file
// JSON document — into the Config this module's schema and event
// handling packages build from. Grounded on the teacher's
// orchestrator.GetProfile/ProfileConfig shape: a small settled struct
// plus a fallback-to-default lookup, generalized here to parsing
// rather than preset selection.
package appconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/procfile"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

// DefaultStream is used when neither the attrs nor the cfg_file give
// a stream name.
const DefaultStream = "slurm"

// Config is the fully resolved configuration for one sampler
// instance, independent of which surface (attrs or cfg_file) produced
// it.
type Config struct {
	InstancePrefix string
	ArgvSep        string
	ExeSuffix      bool
	SCClkTck       bool
	Stream         string
	Enabled        map[catalog.Code]bool
}

// SchemaOptions projects the parts of Config the schema builder
// needs.
func (c *Config) SchemaOptions() schema.Options {
	return schema.Options{
		SCClkTck:       c.SCClkTck,
		ExeSuffix:      c.ExeSuffix,
		InstancePrefix: c.InstancePrefix,
		ArgvSep:        c.ArgvSep,
	}
}

// allEnabled reports every optional metric enabled, the default when
// no metrics list is given.
func allEnabled() map[catalog.Code]bool {
	m := make(map[catalog.Code]bool)
	for _, d := range catalog.Descriptors() {
		if d.Code == catalog.All {
			continue
		}
		m[d.Code] = true
	}
	return m
}

// alwaysOnNames are the identity fields every instance carries
// regardless of catalog selection; naming one in a metrics list is a
// mistake worth explaining rather than reporting as merely unknown.
var alwaysOnNames = map[string]bool{
	"job_id":     true,
	"task_rank":  true,
	"start_time": true,
	"start_tick": true,
	"is_thread":  true,
	"parent":     true,
	"exe":        true,
}

// metricAliases maps a name users commonly try to a suggestion for
// what to use instead (or "nothing" when there is no catalog
// equivalent at all).
var metricAliases = map[string]string{
	"parent_pid": "nothing",
	"ppid":       "nothing",
	"os_pid":     "stat_pid",
	"pid":        "stat_pid",
}

// enabledFromNames resolves a list of metric names against the
// catalog, failing on the first unknown name.
func enabledFromNames(names []string) (map[catalog.Code]bool, error) {
	m := make(map[catalog.Code]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if alwaysOnNames[name] {
			return nil, &apperrors.InvalidConfigError{Reason: "metric '" + name + "' is not optional, remove it"}
		}
		if sub, ok := metricAliases[name]; ok {
			return nil, &apperrors.InvalidConfigError{Reason: "metric '" + name + "' is not supported, replace with " + sub}
		}
		d, ok := catalog.LookupByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q: %w", name, apperrors.ErrNotFound)
		}
		m[d.Code] = true
	}
	return m, nil
}

// ParseAttrs builds a Config from a flat key=value attribute list,
// the shape a host config line splits into. A cfg_file attribute
// takes over entirely: every other key is ignored, matching the
// original plugin's config() precedence.
func ParseAttrs(attrs map[string]string) (*Config, error) {
	if path, ok := attrs["cfg_file"]; ok && path != "" {
		return LoadFile(path)
	}

	cfg := &Config{Stream: DefaultStream}

	if v, ok := attrs["instance_prefix"]; ok {
		cfg.InstancePrefix = v
	}
	if v, ok := attrs["argv_sep"]; ok {
		if err := procfile.ValidateArgvSep(v); err != nil {
			return nil, err
		}
		cfg.ArgvSep = v
	}
	if _, ok := attrs["exe_suffix"]; ok {
		cfg.ExeSuffix = true
	}
	if _, ok := attrs["sc_clk_tck"]; ok {
		cfg.SCClkTck = true
	}
	if v, ok := attrs["stream"]; ok && v != "" {
		cfg.Stream = v
	}

	if v, ok := attrs["metrics"]; ok {
		enabled, err := enabledFromNames(strings.Split(v, ","))
		if err != nil {
			return nil, err
		}
		cfg.Enabled = enabled
	} else {
		cfg.Enabled = allEnabled()
	}

	return cfg, nil
}

// EnabledNames returns the enabled metric names sorted by name,
// mainly for diagnostics and the describe_catalog debug tool.
func (c *Config) EnabledNames() []string {
	var names []string
	for _, d := range catalog.Descriptors() {
		if d.Code != catalog.All && c.Enabled[d.Code] {
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	return names
}
