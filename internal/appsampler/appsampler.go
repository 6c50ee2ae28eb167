// Package appsampler is the top-level component a host daemon embeds:
// Configure builds the schema/registry/handler/engine from a
// configuration surface, StreamCallback feeds lifecycle notifications
// in, and Sample drives one tick. Grounded on the teacher's
// internal/orchestrator.Orchestrator's New/Run shape — build the
// active set once, then drive the work loop against it — generalized
// from "collect once per CLI invocation" to "dispatch events and tick
// for the life of the host process."
package appsampler

import (
	"context"
	"sync"
	"time"

	"github.com/ovis-hpc/ldms-appsampler/internal/apperrors"
	"github.com/ovis-hpc/ldms-appsampler/internal/appconfig"
	"github.com/ovis-hpc/ldms-appsampler/internal/diag"
	"github.com/ovis-hpc/ldms-appsampler/internal/events"
	"github.com/ovis-hpc/ldms-appsampler/internal/eventsource"
	"github.com/ovis-hpc/ldms-appsampler/internal/procfile"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
	"github.com/ovis-hpc/ldms-appsampler/internal/registry"
	"github.com/ovis-hpc/ldms-appsampler/internal/sampler"
	"github.com/ovis-hpc/ldms-appsampler/internal/schema"
)

// Options are the host-supplied wiring a Configure call needs beyond
// the attrs/cfg_file surface: identity to stamp on every created set,
// where to find /proc, and the log sink. The set factory is passed to
// Configure separately.
type Options struct {
	Producer    string
	SchemaName  string
	ComponentID uint64

	// ProcRoot overrides "/proc" for tests and the replay/demo
	// commands.
	ProcRoot string

	Diag diag.Sink
}

// Sampler composes the schema builder, registry, event handler, and
// tick engine into the single object a host embeds.
type Sampler struct {
	mu         sync.Mutex
	configured bool

	cfg      *appconfig.Config
	schema   *schema.Schema
	registry *registry.Registry
	handler  *events.Handler
	engine   *sampler.Engine
	diagOnce *diag.Once
}

// New returns an unconfigured Sampler.
func New() *Sampler { return &Sampler{} }

// Configure parses attrs (or the cfg_file it names) and builds the
// schema, registry, event handler, and tick engine. Configure may be
// called at most once per instance (spec.md §4.1's ALREADY check).
func (s *Sampler) Configure(attrs map[string]string, factory procset.SetFactory, opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured {
		return apperrors.ErrAlreadyConfigured
	}

	cfg, err := appconfig.ParseAttrs(attrs)
	if err != nil {
		return err
	}

	// The system's clock-ticks-per-second rate is needed to convert a
	// start_tick into a start_time string regardless of whether the
	// sc_clk_tck metric itself is enabled (cfg.SCClkTck gates only
	// whether that metric is added to the schema and written).
	sclkTck := procfile.ClockTicksPerSec()

	hostFields := []schema.HostField{{Name: "job_id"}, {Name: "component_id"}}
	sch := schema.Build(cfg.Enabled, cfg.SchemaOptions(), hostFields)

	reg := registry.New()
	d := diag.NewOnce(diagSinkOf(opts.Diag))

	s.handler = &events.Handler{
		Registry:    reg,
		Schema:      sch,
		Factory:     factory,
		Producer:    opts.Producer,
		SchemaName:  opts.SchemaName,
		ComponentID: opts.ComponentID,
		Options: events.Options{
			InstancePrefix: cfg.InstancePrefix,
			ExeSuffix:      cfg.ExeSuffix,
			SCClkTck:       sclkTck,
		},
		ProcRoot: opts.ProcRoot,
		Diag:     d,
	}

	eng := sampler.New(reg, factory, sch, cfg.Enabled, cfg.ArgvSep, opts.ProcRoot)
	eng.Diag = d

	s.cfg = cfg
	s.schema = sch
	s.registry = reg
	s.engine = eng
	s.diagOnce = d
	s.configured = true
	return nil
}

func diagSinkOf(sink diag.Sink) diag.Sink {
	if sink == nil {
		return diag.Noop{}
	}
	return sink
}

// StreamCallback dispatches one raw {"event","data"} notification.
func (s *Sampler) StreamCallback(ctx context.Context, raw []byte) error {
	if !s.configured {
		return apperrors.ErrNotConfigured
	}
	return s.handler.Dispatch(ctx, raw)
}

// Sample runs one sampling pass across every tracked set.
func (s *Sampler) Sample(ctx context.Context) error {
	if !s.configured {
		return apperrors.ErrNotConfigured
	}
	return s.engine.Tick(ctx)
}

// TrackedSetCount reports the number of live tracked sets, mainly for
// the list_tracked_sets debug tool and tests.
func (s *Sampler) TrackedSetCount() int {
	if !s.configured {
		return 0
	}
	return s.registry.Len()
}

// Schema exposes the built schema, mainly for the schema_summary debug
// tool.
func (s *Sampler) Schema() *schema.Schema { return s.schema }

// EnabledMetrics exposes the configured metric names sorted by name,
// mainly for the describe_catalog debug tool.
func (s *Sampler) EnabledMetrics() []string {
	if s.cfg == nil {
		return nil
	}
	return s.cfg.EnabledNames()
}

// Run drives the sampler for the life of ctx: every event src emits is
// dispatched as it arrives, and Sample runs once per tickInterval. Run
// returns when ctx is cancelled or src's channel closes.
func (s *Sampler) Run(ctx context.Context, src eventsource.Source, tickInterval time.Duration) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-src.Events():
			if !ok {
				return nil
			}
			if err := s.StreamCallback(ctx, raw); err != nil {
				s.diagOnce.Log("dispatch error: %v", err)
			}
		case <-ticker.C:
			if err := s.Sample(ctx); err != nil {
				s.diagOnce.Log("sample error: %v", err)
			}
		}
	}
}

// HandlerCount reports how many procfile handlers the engine will run
// each tick, mainly for diagnostics.
func (s *Sampler) HandlerCount() int {
	if !s.configured {
		return 0
	}
	return s.engine.Len()
}
