// Package nodestore defines the interface for storing and retrieving the
// mutable execution state of graph nodes during a run.
//
// The graph itself is immutable once built. Everything that changes while it
// executes (a node's status and its recorded outcome) lives in a Store, so
// nodes can be read concurrently without locking.
package nodestore

import (
	"context"
	"fmt"
)

// Status is the execution state of a node.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	// StatusTolerated is a failure that was allowed and did not stop the run.
	StatusTolerated
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusTolerated:
		return "tolerated"
	case StatusSkipped:
		return "skipped"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Done reports whether the node will not change state again.
func (s Status) Done() bool {
	return s >= StatusCompleted
}

// Store manages the execution state of nodes.
//
// Implementations must be safe for concurrent use: nodes of one wave run in
// parallel and record their state at the same time.
type Store interface {
	// SetStatus updates the execution status of a node.
	SetStatus(ctx context.Context, id string, status Status) error
	// GetStatus returns StatusPending if no status has been set yet.
	GetStatus(ctx context.Context, id string) (Status, error)

	// SetOutput records the outcome of a node.
	SetOutput(ctx context.Context, id string, output any) error
	// GetOutput returns nil if the node has not recorded an outcome.
	GetOutput(ctx context.Context, id string) (any, error)

	// Reset forgets every status and output.
	Reset(ctx context.Context) error
}
