// Package eventsource supplies lifecycle events to internal/events.
// The sampler core doesn't care where task_init_priv/task_exit
// notifications come from; this package ships two producers: a
// newline-delimited-JSON replay source for tests and offline
// debugging, and (build-tagged) a native eBPF tracepoint source in
// eventsource/ebpfsrc.
package eventsource

// Source emits raw {"event","data"} envelopes, one per notification.
// Events is closed when the source is done (EOF, Close, or a fatal
// read error).
type Source interface {
	Events() <-chan []byte
	Close() error
}
