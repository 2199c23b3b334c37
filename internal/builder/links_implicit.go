package builder

import (
	"fmt"
	"slices"

	"github.com/vk/contestflow/internal/graph"
	"github.com/vk/contestflow/internal/step"
)

// inferEdge returns the highest-priority footprint edge from a to b, where a
// precedes b in step order.
func inferEdge(a, b *graph.Node) (graph.Edge, bool) {
	if path, ok := createdThenRead(a, b); ok {
		return graph.Edge{
			From:        a.ID,
			To:          b.ID,
			Kind:        graph.FileCreation,
			Resource:    path,
			Description: fmt.Sprintf("%s reads %s created by %s", b.ID, path, a.ID),
		}, true
	}
	if path, ok := dirThenUsed(a, b); ok {
		return graph.Edge{
			From:        a.ID,
			To:          b.ID,
			Kind:        graph.DirectoryCreation,
			Resource:    path,
			Description: fmt.Sprintf("%s needs directory %s created by %s", b.ID, path, a.ID),
		}, true
	}
	return graph.Edge{}, false
}

// createdThenRead finds a path b reads that a creates. Reading a directory
// tree also depends on any file or directory a creates inside it.
func createdThenRead(a, b *graph.Node) (string, bool) {
	if common := step.Intersect(a.CreatesFiles, b.ReadsFiles); len(common) > 0 {
		return common[0], true
	}
	return overlaps(slices.Concat(a.CreatesDirs, a.CreatesFiles), b.ReadsFiles)
}

// dirThenUsed finds a directory a creates that b requires, or that contains
// a file b creates.
func dirThenUsed(a, b *graph.Node) (string, bool) {
	if common := step.Intersect(a.CreatesDirs, b.RequiresDirs); len(common) > 0 {
		return common[0], true
	}
	for _, dir := range a.CreatesDirs {
		for _, file := range b.CreatesFiles {
			if step.IsAncestor(dir, file) {
				return dir, true
			}
		}
	}
	return "", false
}

// conflict reports a resource two adjacent nodes fight over: both create
// the same file or directory, or one creates a path the other reads.
func conflict(a, b *graph.Node) (string, bool) {
	for _, pair := range [][2][]string{
		{a.CreatesFiles, b.CreatesFiles},
		{a.CreatesDirs, b.CreatesDirs},
		{a.CreatesFiles, b.ReadsFiles},
		{a.ReadsFiles, b.CreatesFiles},
	} {
		if common := step.Intersect(pair[0], pair[1]); len(common) > 0 {
			return common[0], true
		}
	}
	if path, ok := overlaps(a.CreatesDirs, b.ReadsFiles); ok {
		return path, true
	}
	return overlaps(b.CreatesDirs, a.ReadsFiles)
}

// overlaps finds a read path that equals or contains a created one.
func overlaps(created, read []string) (string, bool) {
	for _, r := range read {
		for _, c := range created {
			if c == r || step.IsAncestor(r, c) {
				return r, true
			}
		}
	}
	return "", false
}

// removes reports whether n deletes the paths it reads.
func removes(n *graph.Node) bool {
	switch n.StepType {
	case step.Remove, step.RmTree, step.Move, step.MoveTree:
		return true
	}
	return false
}

// linkImplicit adds footprint edges for every ordered pair of nodes.
func linkImplicit(g *graph.Graph) error {
	nodes := g.Nodes()
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			e, ok := inferEdge(a, b)
			if !ok {
				continue
			}
			if err := g.AddEdge(e); err != nil {
				return err
			}
		}
	}
	return nil
}

// linkExecutionOrder adds ordering edges between adjacent nodes that are
// not yet connected but conflict on a resource. A node that removes a path
// is also ordered before every later node that creates it again.
func linkExecutionOrder(g *graph.Graph) error {
	nodes := g.Nodes()
	for i := 0; i+1 < len(nodes); i++ {
		a, b := nodes[i], nodes[i+1]
		if g.HasEdge(a.ID, b.ID) || g.HasEdge(b.ID, a.ID) {
			continue
		}
		path, ok := conflict(a, b)
		if !ok {
			continue
		}
		if err := g.AddEdge(graph.Edge{
			From:        a.ID,
			To:          b.ID,
			Kind:        graph.ExecutionOrder,
			Resource:    path,
			Description: fmt.Sprintf("%s and %s both touch %s", a.ID, b.ID, path),
		}); err != nil {
			return err
		}
	}

	for i, a := range nodes {
		if !removes(a) {
			continue
		}
		for _, b := range nodes[i+1:] {
			if g.HasEdge(a.ID, b.ID) {
				continue
			}
			path, ok := overlaps(slices.Concat(b.CreatesDirs, b.CreatesFiles), a.ReadsFiles)
			if !ok {
				continue
			}
			if err := g.AddEdge(graph.Edge{
				From:        a.ID,
				To:          b.ID,
				Kind:        graph.ExecutionOrder,
				Resource:    path,
				Description: fmt.Sprintf("%s recreates %s removed by %s", b.ID, path, a.ID),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
