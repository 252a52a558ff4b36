package dispatch

import (
	"io"
	"strconv"
	"time"

	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/retry"
)

// Drain renders Outcomes in strict ascending job_id order (I4), consulting
// both the Outcome Map and the retry-failed map as a uniform source.
type Drain struct {
	Outcomes *outcome.Map
	Retry    *retry.Bookkeeping
	Stdout   io.Writer
	Stderr   io.Writer

	next  uint64
	total uint64
	done  bool
}

// NewDrain creates a Drain expecting total inputs, starting at job_id 0.
func NewDrain(outcomes *outcome.Map, retryBook *retry.Bookkeeping, stdout, stderr io.Writer, total uint64) *Drain {
	return &Drain{Outcomes: outcomes, Retry: retryBook, Stdout: stdout, Stderr: stderr, total: total}
}

// Run blocks until all `total` job ids have been rendered in order.
func (d *Drain) Run() {
	for d.next < d.total {
		o, failedInput, failed := d.take(d.next)
		if failed {
			renderFailed(d.Stderr, d.next, failedInput)
		} else {
			render(d.Stdout, d.Stderr, o)
		}
		d.next++
	}
}

// take blocks until job_id is available from either source, returning
// failed=true if it surfaced as a permanently-failed input from the retry
// bookkeeping (with that input string) or as a Failed Outcome Map entry
// (with an empty input string, since the Outcome does not carry it).
func (d *Drain) take(jobID uint64) (outcome.Outcome, string, bool) {
	for {
		if o, ok := d.Outcomes.TryTake(jobID); ok {
			if o.Failed {
				return o, "", true
			}
			return o, "", false
		}
		if input, ok := d.Retry.TakeFailed(jobID); ok {
			return outcome.Outcome{}, input, true
		}
		time.Sleep(outcome.DefaultPollInterval)
	}
}

func render(stdout, stderr io.Writer, o outcome.Outcome) {
	io.WriteString(stdout, o.Stdout)
	if o.Stderr != "" {
		io.WriteString(stderr, o.Stderr)
	}
}

func renderFailed(stderr io.Writer, jobID uint64, input string) {
	io.WriteString(stderr, "concurr [WARN "+strconv.FormatUint(jobID, 10)+"]: failed to execute '"+input+"'\n")
}
