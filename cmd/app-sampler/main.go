// app-sampler — standalone driver for the per-process application
// sampler core. Wires a replay (or native eBPF, build-tagged) event
// source and an in-memory set factory around internal/appsampler, the
// same core a host daemon would embed, so the sampler can be run,
// inspected, and fed test fixtures from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ovis-hpc/ldms-appsampler/internal/appsampler"
	"github.com/ovis-hpc/ldms-appsampler/internal/catalog"
	"github.com/ovis-hpc/ldms-appsampler/internal/diag"
	"github.com/ovis-hpc/ldms-appsampler/internal/eventsource"
	"github.com/ovis-hpc/ldms-appsampler/internal/procset"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "app-sampler",
		Short: "Per-process application metrics sampler",
		Long: `app-sampler tracks per-OS-process metrics keyed by (start_tick, pid),
driven by task_init_priv/task_exit lifecycle notifications and periodic
/proc scraping.

This binary runs the same core a host monitoring daemon embeds, against
an in-memory set store and a replayed or live event source, for
development, debugging, and fixture capture.`,
		Version: version,
	}

	rootCmd.AddCommand(newServeCmd(), newInjectCmd(), newCatalogCmd(), newMCPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type attrFlags map[string]string

func (a *attrFlags) String() string { return "" }

func (a *attrFlags) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("attr %q must be key=value", s)
	}
	if *a == nil {
		*a = make(attrFlags)
	}
	(*a)[k] = v
	return nil
}

func (a *attrFlags) Type() string { return "key=value" }

// serveOptions are the flags shared by serve and mcp: both configure a
// Sampler against an in-memory factory before doing their own thing
// with it.
type serveOptions struct {
	attrs       attrFlags
	cfgFile     string
	producer    string
	schemaName  string
	componentID uint64
	procRoot    string
	verbose     bool
}

func (o *serveOptions) addFlags(fs *pflag.FlagSet) {
	fs.Var(&o.attrs, "attr", "sampler config attribute key=value (repeatable)")
	fs.StringVar(&o.cfgFile, "cfg-file", "", "sampler config JSON file (overrides --attr entirely)")
	fs.StringVar(&o.producer, "producer", "node1", "producer name stamped on every created set")
	fs.StringVar(&o.schemaName, "schema", "app_sampler", "schema name stamped on every created set")
	fs.Uint64Var(&o.componentID, "component-id", 0, "component_id value stamped on every created set")
	fs.StringVar(&o.procRoot, "proc-root", "/proc", "root to scrape instead of /proc")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "log every dispatch and tick to stderr")
}

func newSampler(o *serveOptions) (*appsampler.Sampler, error) {
	attrs := map[string]string(o.attrs)
	if o.cfgFile != "" {
		if attrs == nil {
			attrs = make(map[string]string)
		}
		attrs["cfg_file"] = o.cfgFile
	}

	var sink diag.Sink
	if o.verbose {
		sink = diag.NewStderr(true)
	}

	s := appsampler.New()
	err := s.Configure(attrs, procset.NewMemSet(), appsampler.Options{
		Producer:    o.producer,
		SchemaName:  o.schemaName,
		ComponentID: o.componentID,
		ProcRoot:    o.procRoot,
		Diag:        sink,
	})
	return s, err
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	var eventsPath string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sampler against a replayed event stream",
		Long: `Reads newline-delimited JSON lifecycle events from --events (or stdin
if omitted) and drives the sampler with them, ticking every --interval
until the event stream is exhausted or the process is interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSampler(opts)
			if err != nil {
				return fmt.Errorf("configure: %w", err)
			}

			var r = os.Stdin
			if eventsPath != "" && eventsPath != "-" {
				f, err := os.Open(eventsPath)
				if err != nil {
					return fmt.Errorf("open events file: %w", err)
				}
				defer f.Close()
				r = f
			}
			src := eventsource.NewReplay(r)
			defer src.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return s.Run(ctx, src, interval)
		},
	}

	opts.addFlags(cmd.Flags())
	cmd.Flags().StringVar(&eventsPath, "events", "", "NDJSON event file (default stdin)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "sampling tick interval")
	return cmd
}

func newInjectCmd() *cobra.Command {
	var (
		event     string
		pid       int64
		jobID     uint64
		parentPID int64
		isThread  bool
		startTick uint64
		exe       string
	)

	cmd := &cobra.Command{
		Use:   "inject",
		Short: "Print one lifecycle event envelope as a fixture line",
		Long: `Builds a single {"event","data"} envelope from flags and writes it to
stdout, the shape "serve --events" expects one line of. Useful for
hand-assembling replay fixtures without a live notifier.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]interface{}{"os_pid": pid}
			switch event {
			case "task_init_priv":
				data["job_id"] = jobID
				if parentPID != 0 {
					data["parent_pid"] = parentPID
					data["is_thread"] = boolToInt(isThread)
				}
				if exe != "" {
					data["exe"] = exe
				}
			case "task_exit":
				if startTick != 0 {
					data["start_tick"] = startTick
				}
			default:
				return fmt.Errorf("unknown event kind %q, want task_init_priv or task_exit", event)
			}

			env := map[string]interface{}{"event": event, "data": data}
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(env)
		},
	}

	cmd.Flags().StringVar(&event, "event", "task_init_priv", "event kind: task_init_priv or task_exit")
	cmd.Flags().Int64Var(&pid, "pid", 0, "os_pid")
	cmd.Flags().Uint64Var(&jobID, "job-id", 0, "job_id (task_init_priv)")
	cmd.Flags().Int64Var(&parentPID, "parent-pid", 0, "parent_pid (task_init_priv, optional)")
	cmd.Flags().BoolVar(&isThread, "is-thread", false, "is_thread (task_init_priv, optional)")
	cmd.Flags().Uint64Var(&startTick, "start-tick", 0, "start_tick (task_exit, optional: resolved from /proc otherwise)")
	cmd.Flags().StringVar(&exe, "exe", "", "exe path override (task_init_priv, optional)")
	cmd.MarkFlagRequired("pid")
	return cmd
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List every metric the catalog knows",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, d := range catalog.Descriptors() {
				if d.Code == catalog.All {
					continue
				}
				meta := ""
				if d.Meta {
					meta = " meta"
				}
				unit := d.Unit
				if unit != "" {
					unit = " (" + unit + ")"
				}
				fmt.Fprintf(w, "%-20s %s%s%s\n", d.Name, d.Type, unit, meta)
			}
			return nil
		},
	}
}

