// Package diag is the sampler's logging collaborator: the host daemon
// owns the real sink (out of scope), so the core talks to a small
// interface and this package supplies a default stderr implementation
// for standalone use and tests.
package diag

import (
	"fmt"
	"os"
	"time"
)

// Sink receives log lines from the sampler core. Warn is for one-shot
// or rare conditions (ALREADY_EXISTS, OOM); Log is for routine trace.
type Sink interface {
	Log(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Stderr logs to stderr with an elapsed-time prefix, matching the
// shape of a plain progress reporter rather than a structured logger.
type Stderr struct {
	enabled bool
	start   time.Time
}

// NewStderr creates a Stderr sink. Set enabled=false to silence Log
// (Warn always prints, since warnings are one-shot by convention).
func NewStderr(enabled bool) *Stderr {
	return &Stderr{enabled: enabled, start: time.Now()}
}

func (s *Stderr) Log(format string, args ...interface{}) {
	if !s.enabled {
		return
	}
	s.write("", format, args...)
}

func (s *Stderr) Warn(format string, args ...interface{}) {
	s.write("WARN ", format, args...)
}

func (s *Stderr) write(prefix, format string, args ...interface{}) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[%s] %s%s\n", elapsed, prefix, msg)
}

// Noop discards everything; useful for tests that don't care about
// log output.
type Noop struct{}

func (Noop) Log(string, ...interface{})  {}
func (Noop) Warn(string, ...interface{}) {}

// Once wraps a Sink so that Warn with a given key fires only the
// first time, matching the spec's "one-shot warning" requirement for
// AlreadyExists/OutOfMemory.
type Once struct {
	Sink
	seen map[string]bool
}

// NewOnce wraps sink with one-shot-per-key warning suppression.
func NewOnce(sink Sink) *Once {
	return &Once{Sink: sink, seen: make(map[string]bool)}
}

// WarnOnce emits the warning only the first time it is called with
// this key.
func (o *Once) WarnOnce(key, format string, args ...interface{}) {
	if o.seen[key] {
		return
	}
	o.seen[key] = true
	o.Sink.Warn(format, args...)
}
