//go:build ebpf

package ebpfsrc

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cilium/ebpf/ringbuf"
)

// eventsMapName is the ring buffer map every task_lifecycle.o program
// writes its records into.
const eventsMapName = "events"

// rawEvent mirrors the fixed-layout record the kernel side writes:
// kind (0 = exec, 1 = exit), pid, parent pid, is_thread, start_tick
// (clock ticks since boot), and the kernel-truncated comm.
type rawEvent struct {
	Kind      uint8
	_         [3]byte
	PID       int32
	PPID      int32
	IsThread  uint8
	_         [3]byte
	StartTick uint64
	Comm      [16]byte
}

const (
	kindExec uint8 = 0
	kindExit uint8 = 1
)

// Source loads both lifecycle tracepoint programs and translates
// their ring buffer records into the same {"event","data"} envelope
// shape internal/events.Handler.Dispatch consumes.
type Source struct {
	programs []*LoadedProgram
	readers  []*ringbuf.Reader
	events   chan []byte

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Open loads and attaches every entry in Tracepoints and starts
// draining their ring buffers.
func Open() (*Source, error) {
	loader := NewLoader()
	s := &Source{events: make(chan []byte)}

	for _, spec := range Tracepoints {
		prog, err := loader.TryLoad(spec)
		if err != nil {
			s.closePrograms()
			return nil, err
		}
		s.programs = append(s.programs, prog)

		m, ok := prog.Collection.Maps[eventsMapName]
		if !ok {
			s.closePrograms()
			return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("map %q not found", eventsMapName)}
		}
		rd, err := ringbuf.NewReader(m)
		if err != nil {
			s.closePrograms()
			return nil, &LoadError{Program: spec.Name, Err: fmt.Errorf("open ring buffer: %w", err)}
		}
		s.readers = append(s.readers, rd)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	for _, rd := range s.readers {
		s.wg.Add(1)
		go s.drain(ctx, rd)
	}
	return s, nil
}

func (s *Source) drain(ctx context.Context, rd *ringbuf.Reader) {
	defer s.wg.Done()
	for {
		rec, err := rd.Read()
		if err != nil {
			return
		}
		env, ok := decodeEnvelope(rec.RawSample)
		if !ok {
			continue
		}
		select {
		case s.events <- env:
		case <-ctx.Done():
			return
		}
	}
}

func decodeEnvelope(raw []byte) ([]byte, bool) {
	var ev rawEvent
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &ev); err != nil {
		return nil, false
	}
	comm := string(bytes.TrimRight(ev.Comm[:], "\x00"))

	var eventName string
	var data string
	switch ev.Kind {
	case kindExec:
		eventName = "task_init_priv"
		isThread := 0
		if ev.IsThread != 0 {
			isThread = 1
		}
		data = fmt.Sprintf(`{"os_pid":%d,"parent_pid":%d,"is_thread":%d,"start_tick":%d,"exe":%q}`,
			ev.PID, ev.PPID, isThread, ev.StartTick, comm)
	case kindExit:
		eventName = "task_exit"
		data = fmt.Sprintf(`{"os_pid":%d,"start_tick":%d}`, ev.PID, ev.StartTick)
	default:
		return nil, false
	}

	return []byte(fmt.Sprintf(`{"event":%q,"data":%s}`, eventName, data)), true
}

func (s *Source) closePrograms() {
	for _, p := range s.programs {
		p.Close()
	}
}

// Events returns the merged channel of raw envelope bytes from both
// tracepoints.
func (s *Source) Events() <-chan []byte { return s.events }

// Close stops draining, detaches every program, and closes the
// readers.
func (s *Source) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	for _, rd := range s.readers {
		rd.Close()
	}
	s.wg.Wait()
	close(s.events)
	s.closePrograms()
	return nil
}
