package builder

import (
	"context"
	"fmt"

	"github.com/vk/contestflow/internal/ctxlog"
	"github.com/vk/contestflow/internal/graph"
	"github.com/vk/contestflow/internal/resolver"
	"github.com/vk/contestflow/internal/step"
)

// Build constructs the execution graph for steps. Invalid steps are
// collected as errors and skipped; the returned graph is never nil.
// Warnings describe resolver changes and questionable references.
func Build(ctx context.Context, steps []step.Step, rc resolver.Context) (*graph.Graph, []error, []string) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "steps", len(steps))

	var (
		errs     []error
		warnings []string
		valid    = make([]step.Step, 0, len(steps))
	)

	// First pass: validate the input steps against the constructor table.
	for i, s := range steps {
		if _, err := newRequest(i, s); err != nil {
			logger.Debug("Build: Skipping invalid step.", "index", i, "type", s.Type, "error", err)
			errs = append(errs, err)
			continue
		}
		valid = append(valid, s)
	}
	logger.Debug("Build: Validation complete.", "valid", len(valid), "invalid", len(errs))

	// Second pass: inject preparatory steps for missing directories.
	resolved := resolver.Resolve(ctx, valid, rc)
	warnings = append(warnings, resolved.Warnings...)

	// Third pass: create nodes.
	plan := make([]planned, 0, len(resolved.Steps))
	for i, s := range resolved.Steps {
		req, err := newRequest(i, s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		plan = append(plan, planned{step: s, req: req})
	}
	ids, idWarnings := assignIDs(plan)
	warnings = append(warnings, idWarnings...)

	g := graph.New()
	if err := createNodes(g, plan, ids); err != nil {
		errs = append(errs, err)
		return g, errs, warnings
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	// Fourth pass: link dependencies.
	if err := linkImplicit(g); err != nil {
		errs = append(errs, fmt.Errorf("failed to link nodes: %w", err))
	}
	refWarnings, err := linkExplicit(g)
	warnings = append(warnings, refWarnings...)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to link result references: %w", err))
	}
	if err := linkExecutionOrder(g); err != nil {
		errs = append(errs, fmt.Errorf("failed to link execution order: %w", err))
	}
	logger.Debug("Build: Node linking complete.", "edge_count", len(g.Edges()))

	// Final validation: cycle detection.
	if err := g.Validate(); err != nil {
		errs = append(errs, err)
	}

	stats := g.Stats()
	logger.Info("✅ Execution graph built.",
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"errors", len(errs),
		"warnings", len(warnings),
		"complexity", stats.Complexity,
	)
	logger.Debug("Build: Graph statistics.",
		"node_kinds", stats.NodeKinds,
		"edge_kinds", stats.EdgeKinds,
		"unique_paths", stats.Resources.UniquePaths,
		"fingerprint", stats.Fingerprint,
	)
	return g, errs, warnings
}
