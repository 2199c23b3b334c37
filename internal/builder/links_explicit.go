package builder

import (
	"fmt"

	"github.com/vk/contestflow/internal/graph"
	"github.com/vk/contestflow/internal/request"
)

// linkExplicit adds a ResourceAccess edge for every result placeholder that
// references an earlier node, unless the pair is already connected. Invalid
// references are returned as warnings.
func linkExplicit(g *graph.Graph) ([]string, error) {
	var warnings []string
	nodes := g.Nodes()
	position := make(map[string]int, len(nodes))
	for i, n := range nodes {
		position[n.ID] = i
	}

	for i, n := range nodes {
		for _, ref := range request.References(n.Request) {
			at, ok := position[ref.NodeID]
			switch {
			case !ok:
				warnings = append(warnings, fmt.Sprintf("%s references unknown node %q in %s", n.ID, ref.NodeID, ref.Raw))
				continue
			case at == i:
				warnings = append(warnings, fmt.Sprintf("%s references its own result in %s", n.ID, ref.Raw))
				continue
			case at > i:
				warnings = append(warnings, fmt.Sprintf("%s references later node %q in %s", n.ID, ref.NodeID, ref.Raw))
				continue
			}
			if g.HasEdge(ref.NodeID, n.ID) {
				continue
			}
			if err := g.AddEdge(graph.Edge{
				From:        ref.NodeID,
				To:          n.ID,
				Kind:        graph.ResourceAccess,
				Resource:    ref.Raw,
				Description: fmt.Sprintf("%s uses the %s of %s", n.ID, ref.Field, ref.NodeID),
			}); err != nil {
				return warnings, err
			}
		}
	}
	return warnings, nil
}
