package eventsource

import (
	"io"
	"strings"
	"testing"
	"time"
)

func TestReplayEmitsOneEventPerLine(t *testing.T) {
	input := strings.NewReader("{\"event\":\"task_init_priv\",\"data\":{}}\n\n{\"event\":\"task_exit\",\"data\":{}}\n")
	rep := NewReplay(input)
	defer rep.Close()

	var got []string
	timeout := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case ev, ok := <-rep.Events():
			if !ok {
				t.Fatalf("channel closed early after %d events", i)
			}
			got = append(got, string(ev))
		case <-timeout:
			t.Fatal("timed out waiting for replay events")
		}
	}
	if got[0] != `{"event":"task_init_priv","data":{}}` {
		t.Fatalf("event 0 = %q", got[0])
	}
	if got[1] != `{"event":"task_exit","data":{}}` {
		t.Fatalf("event 1 = %q", got[1])
	}

	select {
	case _, ok := <-rep.Events():
		if ok {
			t.Fatal("expected channel to close after EOF")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestReplayCloseStopsEarly(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	rep := NewReplay(r)
	if err := rep.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
