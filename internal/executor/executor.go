package executor

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/driver"
	"github.com/vk/contestflow/internal/graph"
	"github.com/vk/contestflow/internal/inmemorystore"
	"github.com/vk/contestflow/internal/nodestore"
	"github.com/vk/contestflow/internal/request"
)

// Executor runs one graph. Node state lives in a nodestore.Store, replaced
// at the start of every Run unless Options.Store supplies one. A supplied
// store is reset before each run.
type Executor struct {
	graph   *graph.Graph
	drivers *driver.Set
	opts    Options

	store    nodestore.Store
	outputMu sync.Mutex
}

// New creates an executor for g that dispatches requests to drivers.
func New(g *graph.Graph, drivers *driver.Set, opts Options) *Executor {
	if opts.Mode == "" {
		opts.Mode = Sequential
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	if drivers == nil {
		drivers = &driver.Set{}
	}
	return &Executor{graph: g, drivers: drivers, opts: opts}
}

// Run executes the graph. The returned error covers conditions that prevent
// or interrupt execution as a whole: a cyclic graph, a missing driver, or a
// cancelled context. Node failures are reported through Report.Err.
func (e *Executor) Run(ctx context.Context) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	e.store = e.opts.Store
	if e.store == nil {
		e.store = inmemorystore.New()
	} else if err := e.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset node store: %w", err)
	}

	order, err := e.graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	if err := e.preflight(); err != nil {
		return nil, err
	}

	logger.Info("🚀 Starting execution.", "mode", e.opts.Mode, "nodes", len(order), "max_workers", e.opts.MaxWorkers)
	report := &Report{Mode: e.opts.Mode}

	var runErr error
	switch e.opts.Mode {
	case Sequential:
		runErr = e.runSequential(ctx, order, report)
	case Parallel:
		runErr = e.runParallel(ctx, report)
	default:
		return nil, fmt.Errorf("unknown execution mode %q", e.opts.Mode)
	}

	for _, id := range report.Skipped {
		e.setStatus(ctx, id, nodestore.StatusSkipped)
	}
	report.Outcomes = e.sortedOutcomes(order)
	report.Duration = time.Since(start)
	succeeded, failed, skipped := report.Counts()
	logger.Info("🏁 Execution finished.",
		"aborted", report.Aborted,
		"succeeded", succeeded,
		"failed", failed,
		"skipped", skipped,
		"duration", report.Duration,
	)
	return report, runErr
}

// preflight checks that every request can be served before anything runs.
func (e *Executor) preflight() error {
	for _, n := range e.graph.Nodes() {
		if err := request.Check(n.Request, e.drivers); err != nil {
			return fmt.Errorf("preflight failed for node %s: %w", n.ID, err)
		}
	}
	return nil
}

func (e *Executor) runSequential(ctx context.Context, order []string, report *Report) error {
	for i, id := range order {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			report.Skipped = slices.Clone(order[i:])
			return err
		}
		out := e.runNode(ctx, id)
		if e.isFatal(out) {
			report.Aborted = true
			report.FailedNode = id
			report.Skipped = slices.Clone(order[i+1:])
			return nil
		}
	}
	return nil
}

func (e *Executor) runParallel(ctx context.Context, report *Report) error {
	logger := ctxlog.FromContext(ctx)
	groups, err := e.graph.ParallelGroups()
	if err != nil {
		return err
	}

	skipFrom := func(w int) {
		for _, wave := range groups[w:] {
			report.Skipped = append(report.Skipped, wave...)
		}
	}

	for w, wave := range groups {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			skipFrom(w)
			return err
		}
		logger.Debug("Starting wave.", "wave", w+1, "of", len(groups), "nodes", len(wave))
		e.runWave(ctx, wave)

		for _, id := range wave {
			if out, _ := e.outcome(id); e.isFatal(out) {
				report.Aborted = true
				report.FailedNode = id
				skipFrom(w + 1)
				logger.Debug("Wave contained a fatal failure, later waves are skipped.", "wave", w+1, "node", id)
				return nil
			}
		}
	}
	return nil
}

func (e *Executor) isFatal(o Outcome) bool {
	return !o.Success && !o.Tolerated
}

// Status returns the state of node id in the most recent run.
func (e *Executor) Status(ctx context.Context, id string) (nodestore.Status, error) {
	if e.store == nil {
		return nodestore.StatusPending, nil
	}
	return e.store.GetStatus(ctx, id)
}

// sortedOutcomes returns the recorded outcomes in topological order.
func (e *Executor) sortedOutcomes(order []string) []Outcome {
	out := make([]Outcome, 0, len(order))
	for _, id := range order {
		if o, ok := e.outcome(id); ok {
			out = append(out, o)
		}
	}
	return out
}

func (e *Executor) outcome(id string) (Outcome, bool) {
	v, err := e.store.GetOutput(context.Background(), id)
	if err != nil || v == nil {
		return Outcome{}, false
	}
	o, ok := v.(Outcome)
	return o, ok
}

func (e *Executor) record(ctx context.Context, o Outcome) {
	if err := e.store.SetOutput(ctx, o.NodeID, o); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to record node outcome.", "node", o.NodeID, "error", err)
	}
	status := nodestore.StatusCompleted
	switch {
	case o.Tolerated:
		status = nodestore.StatusTolerated
	case !o.Success:
		status = nodestore.StatusFailed
	}
	e.setStatus(ctx, o.NodeID, status)
}

func (e *Executor) setStatus(ctx context.Context, id string, status nodestore.Status) {
	if err := e.store.SetStatus(ctx, id, status); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to record node status.", "node", id, "status", status, "error", err)
	}
}
