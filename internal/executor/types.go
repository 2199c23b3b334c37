package executor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vk/contestflow/internal/nodestore"
)

// Mode selects how the graph is walked.
type Mode string

const (
	Sequential Mode = "sequential"
	Parallel   Mode = "parallel"
)

// DefaultMaxWorkers bounds the per-wave worker pool when Options leaves it
// unset.
const DefaultMaxWorkers = 4

// ParseMode resolves a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Sequential, Parallel:
		return m, nil
	}
	return "", fmt.Errorf("unknown execution mode %q (want %q or %q)", s, Sequential, Parallel)
}

// Options configures an Executor.
type Options struct {
	Mode       Mode
	MaxWorkers int
	// Output receives the stdout and stderr of requests marked show_output.
	// Nil discards them.
	Output io.Writer
	// Store holds node state and is reset at the start of every Run. Nil
	// gives every Run a fresh in-memory store.
	Store nodestore.Store
}

// Outcome is the recorded result of one node.
type Outcome struct {
	NodeID     string
	Success    bool
	Stdout     string
	Stderr     string
	ReturnCode int
	Error      string
	// Tolerated marks a failure that was allowed and did not abort the run.
	Tolerated   bool
	Duration    time.Duration
	AttemptedAt time.Time
}

// ExecutionFailure describes the node whose failure aborted a run.
type ExecutionFailure struct {
	NodeID     string
	ReturnCode int
	Reason     string
}

// Error implements the error interface.
func (e *ExecutionFailure) Error() string {
	msg := fmt.Sprintf("execution aborted: node %s failed with return code %d", e.NodeID, e.ReturnCode)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Report is the result of a run.
type Report struct {
	Mode     Mode
	Outcomes []Outcome
	Aborted  bool
	// FailedNode is the node whose failure aborted the run, if any.
	FailedNode string
	// Skipped lists nodes that were never dispatched, in topological order.
	Skipped  []string
	Duration time.Duration
}

// Outcome returns the outcome recorded for id.
func (r *Report) Outcome(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.NodeID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

// Succeeded reports whether the run completed without aborting.
func (r *Report) Succeeded() bool { return !r.Aborted }

// Counts returns the number of succeeded, failed and skipped nodes.
func (r *Report) Counts() (succeeded, failed, skipped int) {
	for _, o := range r.Outcomes {
		if o.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed, len(r.Skipped)
}

// Err returns an *ExecutionFailure when the run aborted on a failed node.
func (r *Report) Err() error {
	if !r.Aborted || r.FailedNode == "" {
		return nil
	}
	o, _ := r.Outcome(r.FailedNode)
	reason := o.Error
	if reason == "" {
		reason = strings.TrimSpace(o.Stderr)
	}
	return &ExecutionFailure{NodeID: o.NodeID, ReturnCode: o.ReturnCode, Reason: reason}
}
