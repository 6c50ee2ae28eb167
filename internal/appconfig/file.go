package appconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/procfile"
)

// fileDoc is the cfg_file JSON shape. Unlike the attrs surface,
// exe_suffix and sc_clk_tck are read as ordinary booleans here rather
// than mere key presence.
type fileDoc struct {
	ArgvSep        string   `json:"argv_sep"`
	InstancePrefix string   `json:"instance_prefix"`
	ExeSuffix      bool     `json:"exe_suffix"`
	SCClkTck       bool     `json:"sc_clk_tck"`
	Stream         string   `json:"stream"`
	Metrics        []string `json:"metrics"`
}

// LoadFile reads and parses a cfg_file. The metrics and stream
// options from the attribute list are never consulted when cfg_file
// is given; this is the sole source of truth.
func LoadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.InvalidConfigError{Reason: fmt.Sprintf("cannot open %s: %v", path, err)}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var doc fileDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, &apperrors.InvalidConfigError{Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	if doc.ArgvSep != "" {
		if err := procfile.ValidateArgvSep(doc.ArgvSep); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		InstancePrefix: doc.InstancePrefix,
		ArgvSep:        doc.ArgvSep,
		ExeSuffix:      doc.ExeSuffix,
		SCClkTck:       doc.SCClkTck,
		Stream:         doc.Stream,
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}

	if len(doc.Metrics) > 0 {
		enabled, err := enabledFromNames(doc.Metrics)
		if err != nil {
			return nil, err
		}
		cfg.Enabled = enabled
	} else {
		cfg.Enabled = allEnabled()
	}

	return cfg, nil
}
