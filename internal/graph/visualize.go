package graph

import (
	"fmt"
	"strings"
)

// Visualize renders the graph as plain text: node list, dependency list and
// the parallel waves when the graph is acyclic.
func (g *Graph) Visualize() string {
	groups, groupErr := g.ParallelGroups()

	g.mu.RLock()
	defer g.mu.RUnlock()

	var b strings.Builder
	b.WriteString("Request Execution Graph:\n")
	fmt.Fprintf(&b, "Nodes: %d\n", len(g.order))
	fmt.Fprintf(&b, "Edges: %d\n\n", len(g.edges))

	b.WriteString("Nodes:\n")
	for _, id := range g.order {
		n := g.nodes[id]
		desc := "<nil>"
		if n.Request != nil {
			desc = n.Request.Describe()
		}
		fmt.Fprintf(&b, "  %s: %s", id, desc)
		var res []string
		if c := len(n.CreatesFiles); c > 0 {
			res = append(res, fmt.Sprintf("creates %d file(s)", c))
		}
		if c := len(n.CreatesDirs); c > 0 {
			res = append(res, fmt.Sprintf("creates %d dir(s)", c))
		}
		if c := len(n.ReadsFiles); c > 0 {
			res = append(res, fmt.Sprintf("reads %d path(s)", c))
		}
		if c := len(n.RequiresDirs); c > 0 {
			res = append(res, fmt.Sprintf("requires %d dir(s)", c))
		}
		if len(res) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(res, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDependencies:\n")
	for _, e := range g.edges {
		fmt.Fprintf(&b, "  %s -> %s (%s)", e.From, e.To, e.Kind)
		if e.Resource != "" {
			fmt.Fprintf(&b, " [%s]", e.Resource)
		}
		b.WriteString("\n")
	}

	if groupErr == nil && len(groups) > 0 {
		b.WriteString("\nParallel Execution Groups:\n")
		for i, group := range groups {
			fmt.Fprintf(&b, "  Group %d: %s\n", i+1, strings.Join(group, ", "))
		}
	}
	return b.String()
}
