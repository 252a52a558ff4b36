package dispatch

import (
	"bytes"
	"testing"
	"time"

	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/queue"
	"github.com/concurr/concurr/internal/retry"
)

func TestFeed_AssignsDenseJobIDs(t *testing.T) {
	jobs := queue.New()
	total := Feed(jobs, []string{"a", "b", "c"})
	if total != 3 {
		t.Fatalf("Feed() = %d, want 3", total)
	}
	for i := uint64(0); i < 3; i++ {
		item, ok := jobs.Pop()
		if !ok || item.JobID != i {
			t.Fatalf("expected job id %d, got %+v, %v", i, item, ok)
		}
	}
}

func TestDrain_OrdersByJobIDRegardlessOfCompletionOrder(t *testing.T) {
	outcomes := outcome.New()
	retryBook := retry.New()
	var stdout, stderr bytes.Buffer

	// Insert out of order: 2 completes before 0 and 1.
	go func() {
		time.Sleep(5 * time.Millisecond)
		outcomes.Insert(2, outcome.Outcome{Stdout: "c\n"})
		time.Sleep(5 * time.Millisecond)
		outcomes.Insert(0, outcome.Outcome{Stdout: "a\n"})
		time.Sleep(5 * time.Millisecond)
		outcomes.Insert(1, outcome.Outcome{Stdout: "b\n"})
	}()

	NewDrain(outcomes, retryBook, &stdout, &stderr, 3).Run()

	if stdout.String() != "a\nb\nc\n" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "a\nb\nc\n")
	}
}

func TestDrain_SurfacesPermanentFailures(t *testing.T) {
	outcomes := outcome.New()
	retryBook := retry.New()
	var stdout, stderr bytes.Buffer

	outcomes.Insert(0, outcome.Outcome{Stdout: "ok\n"})
	retryBook.Requeue(1, "bad", retry.MaxAttempts)

	NewDrain(outcomes, retryBook, &stdout, &stderr, 2).Run()

	if stdout.String() != "ok\n" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "ok\n")
	}
	if stderr.Len() == 0 {
		t.Fatalf("expected a warning for the failed job on stderr")
	}
}
