// Package slotworker implements the server-side Slot Worker: a fixed-size
// pool per registered command, each slot popping an input, substituting it
// into the command template, and running the result through the user shell.
package slotworker

import (
	"bytes"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/concurr/concurr/internal/outcome"
	"github.com/concurr/concurr/internal/registry"
	"github.com/concurr/concurr/internal/shellexec"
	"github.com/concurr/concurr/pkg/logging"
)

// PollInterval is the sleep between empty Job Queue pops.
const PollInterval = time.Millisecond

// Run executes the slot loop for slotID against cmd until cmd is killed.
// The kill flag is checked before each pop, so an input already running
// finishes and stores its outcome, but inputs still queued are not run. Run
// returns once it has parked.
func Run(cmd *registry.Command, slotID int, logger logging.Logger) {
	for {
		if cmd.Killed() {
			cmd.Park()
			return
		}
		job, ok := cmd.Jobs.Pop()
		if !ok {
			time.Sleep(PollInterval)
			continue
		}
		executeOne(cmd, uint64(slotID), job.JobID, job.Input, logger)
	}
}

func executeOne(cmd *registry.Command, slotID, jobID uint64, input string, logger logging.Logger) {
	cmdString := cmd.Template.Substitute(slotID, jobID, input)
	shellBin, shellFlag := shellexec.Shell()

	c := exec.Command(shellBin, shellFlag, cmdString)
	setProcAttrs(c)

	stdoutPipe, err := c.StdoutPipe()
	if err != nil {
		logger.Warn("failed to create stdout pipe", "job_id", jobID, "error", err)
		cmd.Outcomes.Insert(jobID, outcome.Outcome{Failed: true})
		return
	}
	stderrPipe, err := c.StderrPipe()
	if err != nil {
		logger.Warn("failed to create stderr pipe", "job_id", jobID, "error", err)
		cmd.Outcomes.Insert(jobID, outcome.Outcome{Failed: true})
		return
	}

	if err := c.Start(); err != nil {
		logger.Warn("failed to spawn subprocess", "job_id", jobID, "error", err)
		cmd.Outcomes.Insert(jobID, outcome.Outcome{Failed: true})
		return
	}

	// Drain both pipes concurrently with execution so output exceeding the
	// OS pipe buffer (e.g. the megabyte-scale scenario) never blocks the
	// child mid-write while nothing is reading.
	var stdoutBuf, stderrBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); io.Copy(&stdoutBuf, stdoutPipe) }()
	go func() { defer wg.Done(); io.Copy(&stderrBuf, stderrPipe) }()
	wg.Wait()

	status := uint8(0)
	if err := c.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			status = uint8(exitErr.ExitCode() & 0xff)
		} else {
			logger.Warn("subprocess wait failed", "job_id", jobID, "error", err)
			cmd.Outcomes.Insert(jobID, outcome.Outcome{Failed: true})
			return
		}
	}

	cmd.Outcomes.Insert(jobID, outcome.Outcome{
		Status: status,
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	})
}
