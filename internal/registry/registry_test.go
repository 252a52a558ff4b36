package registry

import (
	"testing"

	"github.com/concurr/concurr/internal/template"
)

func TestRegisterAssignsHandles(t *testing.T) {
	r := New()
	c1 := r.Register(template.Parse("echo {}"), 2)
	c2 := r.Register(template.Parse("cat {}"), 4)
	if c1.Handle != 0 || c2.Handle != 1 {
		t.Fatalf("expected handles 0,1; got %d,%d", c1.Handle, c2.Handle)
	}
}

func TestFreeAndReuseLowestVacant(t *testing.T) {
	r := New()
	c1 := r.Register(template.Parse("echo {}"), 1)
	r.Register(template.Parse("cat {}"), 1)

	r.Free(c1.Handle)
	c3 := r.Register(template.Parse("wc {}"), 1)
	if c3.Handle != 0 {
		t.Fatalf("expected reused handle 0, got %d", c3.Handle)
	}
}

func TestGetVacantOrOutOfRange(t *testing.T) {
	r := New()
	if _, ok := r.Get(0); ok {
		t.Fatalf("expected Get on empty registry to report ok=false")
	}
	c := r.Register(template.Parse("echo {}"), 1)
	r.Free(c.Handle)
	if _, ok := r.Get(c.Handle); ok {
		t.Fatalf("expected Get on freed handle to report ok=false")
	}
}

func TestKillAndPark(t *testing.T) {
	r := New()
	c := r.Register(template.Parse("echo {}"), 2)
	if c.Killed() {
		t.Fatalf("expected fresh command to not be killed")
	}
	c.Kill()
	if !c.Killed() {
		t.Fatalf("expected Kill() to set the flag")
	}
	if c.AllParked() {
		t.Fatalf("expected AllParked()=false before any Park()")
	}
	c.Park()
	c.Park()
	if !c.AllParked() {
		t.Fatalf("expected AllParked()=true after SlotCount Park() calls")
	}
}

func TestCommsEmptyAndPopulated(t *testing.T) {
	r := New()
	if got := Comms(r); got != "no jobs available" {
		t.Fatalf("Comms() on empty registry = %q", got)
	}
	r.Register(template.Parse("echo {}"), 1)
	if got := Comms(r); got != "0: echo {}" {
		t.Fatalf("Comms() = %q, want %q", got, "0: echo {}")
	}
}
