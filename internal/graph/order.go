package graph

import (
	"fmt"
	"slices"
	"strings"
)

// DependencyCycleError is returned when an ordering is requested on a graph
// that contains cycles.
type DependencyCycleError struct {
	// Cycles lists each cycle as the ids along it; the edge back to the
	// first id is implied.
	Cycles [][]string
	// Report is a multi-line, human-readable explanation.
	Report string
}

// Error implements the error interface.
func (e *DependencyCycleError) Error() string {
	chains := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		chains[i] = strings.Join(append(slices.Clone(c), c[0]), " -> ")
	}
	return fmt.Sprintf("circular dependency detected (%d cycle(s)): %s", len(e.Cycles), strings.Join(chains, "; "))
}

// DetectCycles enumerates the cycles closed by DFS back edges. Traversal
// starts from nodes in insertion order and follows successors in insertion
// order, so the result is deterministic.
func (g *Graph) DetectCycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.detectCycles()
}

func (g *Graph) detectCycles() [][]string {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(g.order))
	seen := make(map[string]bool)
	var (
		stack  []string
		cycles [][]string
		visit  func(id string)
	)
	visit = func(id string) {
		state[id] = inProgress
		stack = append(stack, id)
		for _, next := range g.succ[id] {
			switch state[next] {
			case inProgress:
				cycle := slices.Clone(stack[slices.Index(stack, next):])
				if key := g.canonical(cycle); !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			case unvisited:
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}
	for _, id := range g.order {
		if state[id] == unvisited {
			visit(id)
		}
	}
	return cycles
}

// canonical rotates a cycle so that its earliest-inserted node comes first.
func (g *Graph) canonical(cycle []string) string {
	start := 0
	for i, id := range cycle {
		if g.pos[id] < g.pos[cycle[start]] {
			start = i
		}
	}
	rotated := append(slices.Clone(cycle[start:]), cycle[:start]...)
	return strings.Join(rotated, "\x00")
}

// Validate returns a *DependencyCycleError if the graph has cycles.
func (g *Graph) Validate() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cycleError()
}

func (g *Graph) cycleError() error {
	cycles := g.detectCycles()
	if len(cycles) == 0 {
		return nil
	}
	return &DependencyCycleError{Cycles: cycles, Report: g.formatCycleReport(cycles)}
}

// TopologicalOrder returns every node id such that dependencies precede
// dependents. Among ready nodes the earliest inserted goes first.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if err := g.cycleError(); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(g.order))
	var ready []string
	for _, id := range g.order {
		indegree[id] = len(g.pred[id])
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range g.succ[id] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = g.insertSorted(ready, next)
			}
		}
	}
	return order, nil
}

// ParallelGroups partitions the nodes into waves. Each wave holds exactly
// the unscheduled nodes whose dependencies all sit in earlier waves, in
// insertion order.
func (g *Graph) ParallelGroups() ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	scheduled := make(map[string]bool, len(g.order))
	var groups [][]string
	for len(scheduled) < len(g.order) {
		var wave []string
		for _, id := range g.order {
			if scheduled[id] {
				continue
			}
			ready := true
			for _, dep := range g.pred[id] {
				if !scheduled[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, id)
			}
		}
		if len(wave) == 0 {
			if err := g.cycleError(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("no schedulable node among %d remaining", len(g.order)-len(scheduled))
		}
		for _, id := range wave {
			scheduled[id] = true
		}
		groups = append(groups, wave)
	}
	return groups, nil
}

// edge returns the edge from -> to, if any.
func (g *Graph) edge(from, to string) (Edge, bool) {
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

func (g *Graph) formatCycleReport(cycles [][]string) string {
	var b strings.Builder
	b.WriteString("Circular dependency detected in the workflow graph!\n\n")
	fmt.Fprintf(&b, "Found %d circular dependency chain(s):\n\n", len(cycles))

	for i, cycle := range cycles {
		fmt.Fprintf(&b, "Cycle %d (%d nodes):\n", i+1, len(cycle))
		names := make([]string, 0, len(cycle)+1)
		for _, id := range cycle {
			names = append(names, g.label(id))
		}
		names = append(names, names[0])
		fmt.Fprintf(&b, "  %s\n\n", strings.Join(names, " -> "))

		b.WriteString("  Dependencies in this cycle:\n")
		for j, from := range cycle {
			to := cycle[(j+1)%len(cycle)]
			e, ok := g.edge(from, to)
			if !ok {
				continue
			}
			line := fmt.Sprintf("    %s -> %s (%s)", e.From, e.To, e.Kind)
			if e.Resource != "" {
				line += fmt.Sprintf(" [resource: %s]", e.Resource)
			}
			if e.Description != "" {
				line += " - " + e.Description
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Resolution suggestions:\n")
	b.WriteString("1. Remove or modify one of the dependencies in each cycle\n")
	b.WriteString("2. Check if the dependencies are actually necessary\n")
	b.WriteString("3. Use different resource paths for the conflicting steps\n")
	b.WriteString("4. Review the workflow logic for potential design issues")
	return b.String()
}

func (g *Graph) label(id string) string {
	if n, ok := g.nodes[id]; ok && n.Request != nil {
		return fmt.Sprintf("%s (%s)", id, n.Request.Kind())
	}
	return id
}
