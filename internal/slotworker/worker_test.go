package slotworker

import (
	"os"
	"testing"
	"time"

	"github.com/concurr/concurr/internal/queue"
	"github.com/concurr/concurr/internal/registry"
	"github.com/concurr/concurr/internal/template"
	"github.com/concurr/concurr/pkg/logging"
)

func TestRun_DrainsQueueThenParks(t *testing.T) {
	r := registry.New()
	cmd := r.Register(template.Parse("echo {}"), 1)
	cmd.Jobs.Push(queue.Item{JobID: 0, Input: "one"})
	cmd.Jobs.Push(queue.Item{JobID: 1, Input: "two"})
	logger := logging.NewLogger(logging.DefaultConfig())

	done := make(chan struct{})
	go func() {
		Run(cmd, 0, logger)
		close(done)
	}()

	o0 := cmd.Outcomes.Take(0, time.Millisecond)
	o1 := cmd.Outcomes.Take(1, time.Millisecond)
	if o0.Stdout != "one\n" || o1.Stdout != "two\n" {
		t.Fatalf("unexpected outcomes: %+v %+v", o0, o1)
	}

	cmd.Kill()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not park after Kill")
	}
	if !cmd.AllParked() {
		t.Fatalf("expected AllParked() after Run returns")
	}
}

func TestExecuteOne_Success(t *testing.T) {
	r := registry.New()
	cmd := r.Register(template.Parse("echo {}"), 1)
	logger := logging.NewLogger(logging.DefaultConfig())

	executeOne(cmd, 0, 0, "hello", logger)

	o := cmd.Outcomes.Take(0, time.Millisecond)
	if o.Failed {
		t.Fatalf("expected success, got Failed outcome")
	}
	if o.Status != 0 {
		t.Fatalf("expected status 0, got %d", o.Status)
	}
	if o.Stdout != "hello\n" {
		t.Fatalf("expected stdout %q, got %q", "hello\n", o.Stdout)
	}
}

func TestExecuteOne_NonZeroExit(t *testing.T) {
	r := registry.New()
	cmd := r.Register(template.Parse("sh -c 'exit {}'"), 1)
	logger := logging.NewLogger(logging.DefaultConfig())

	executeOne(cmd, 0, 0, "3", logger)

	o := cmd.Outcomes.Take(0, time.Millisecond)
	if o.Failed {
		t.Fatalf("non-zero exit must not be treated as a Failed outcome")
	}
	if o.Status != 3 {
		t.Fatalf("expected status 3, got %d", o.Status)
	}
}

func TestExecuteOne_SpawnFailure(t *testing.T) {
	old := os.Getenv("SHELL")
	os.Setenv("SHELL", "/nonexistent/shell-xyz")
	defer os.Setenv("SHELL", old)

	r := registry.New()
	cmd := r.Register(template.Parse("echo {}"), 1)
	logger := logging.NewLogger(logging.DefaultConfig())

	executeOne(cmd, 0, 0, "x", logger)

	o := cmd.Outcomes.Take(0, time.Millisecond)
	if !o.Failed {
		t.Fatalf("expected Failed outcome when the shell binary cannot be spawned")
	}
}
