package outcome

import (
	"sync"
	"testing"
	"time"
)

func TestInsertTryTake(t *testing.T) {
	m := New()
	if _, ok := m.TryTake(1); ok {
		t.Fatalf("expected TryTake on empty map to report ok=false")
	}
	m.Insert(1, Outcome{Status: 0, Stdout: "hi"})
	o, ok := m.TryTake(1)
	if !ok || o.Stdout != "hi" {
		t.Fatalf("TryTake() = %+v, %v", o, ok)
	}
	if _, ok := m.TryTake(1); ok {
		t.Fatalf("expected second TryTake to report ok=false (exactly-once removal)")
	}
}

func TestTakeBlocksUntilInsert(t *testing.T) {
	m := New()
	done := make(chan Outcome, 1)
	go func() {
		done <- m.Take(42, time.Millisecond)
	}()

	select {
	case <-done:
		t.Fatalf("Take returned before Insert")
	case <-time.After(20 * time.Millisecond):
	}

	m.Insert(42, Outcome{Status: 1})
	select {
	case o := <-done:
		if o.Status != 1 {
			t.Fatalf("Take() = %+v, want Status=1", o)
		}
	case <-time.After(time.Second):
		t.Fatalf("Take() did not return after Insert")
	}
}

func TestConcurrentInsertDistinctKeys(t *testing.T) {
	m := New()
	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			m.Insert(uint64(id), Outcome{Status: uint8(id % 256)})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		o, ok := m.TryTake(uint64(i))
		if !ok || o.Status != uint8(i%256) {
			t.Fatalf("TryTake(%d) = %+v, %v", i, o, ok)
		}
	}
}
