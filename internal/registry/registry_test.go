package registry

import "testing"

func TestInsertFindRemove(t *testing.T) {
	r := New()
	key := Key{StartTick: 99, PID: 1234}
	rec := &Record{Key: key, TaskRank: -1}

	if _, ok := r.Find(key); ok {
		t.Fatal("expected empty registry")
	}
	r.Insert(rec)
	got, ok := r.Find(key)
	if !ok || got != rec {
		t.Fatalf("Find returned %v, %v", got, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	removed, ok := r.Remove(key)
	if !ok || removed != rec {
		t.Fatalf("Remove returned %v, %v", removed, ok)
	}
	if r.Len() != 0 {
		t.Fatal("expected empty registry after remove")
	}
	if _, ok := r.Remove(key); ok {
		t.Fatal("expected second remove to report absent")
	}
}

func TestIterateStableOrder(t *testing.T) {
	r := New()
	keys := []Key{{StartTick: 1, PID: 1}, {StartTick: 2, PID: 2}, {StartTick: 3, PID: 3}}
	for _, k := range keys {
		r.Insert(&Record{Key: k, TaskRank: -1})
	}
	var seen []Key
	r.Iterate(func(rec *Record) bool {
		seen = append(seen, rec.Key)
		return true
	})
	if len(seen) != len(keys) {
		t.Fatalf("got %d records, want %d", len(seen), len(keys))
	}
	for i, k := range keys {
		if seen[i] != k {
			t.Fatalf("position %d: got %v, want %v", i, seen[i], k)
		}
	}
}

func TestIterateEarlyStop(t *testing.T) {
	r := New()
	for i := 0; i < 5; i++ {
		r.Insert(&Record{Key: Key{StartTick: uint64(i), PID: int64(i)}, TaskRank: -1})
	}
	count := 0
	r.Iterate(func(*Record) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestLockedAccessors(t *testing.T) {
	r := New()
	key := Key{StartTick: 1, PID: 1}
	r.Lock()
	r.InsertLocked(&Record{Key: key, TaskRank: -1})
	_, ok := r.FindLocked(key)
	r.Unlock()
	if !ok {
		t.Fatal("FindLocked failed under lock")
	}
}

func TestIdentityWrittenFlag(t *testing.T) {
	rec := &Record{Key: Key{StartTick: 1, PID: 1}, TaskRank: -1}
	if rec.IdentityWritten() {
		t.Fatal("expected false before MarkIdentityWritten")
	}
	rec.MarkIdentityWritten()
	if !rec.IdentityWritten() {
		t.Fatal("expected true after MarkIdentityWritten")
	}
}
