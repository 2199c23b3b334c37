package builder

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/contestflow/internal/graph"
	"github.com/vk/contestflow/internal/request"
	"github.com/vk/contestflow/internal/step"
)

// planned is a resolved step paired with its request.
type planned struct {
	step step.Step
	req  request.Request
}

// assignIDs picks the node id for every planned step: its name when set,
// valid and unique, otherwise step_<n> with n the resolved position.
func assignIDs(plan []planned) ([]string, []string) {
	var warnings []string
	counts := map[string]int{}
	for _, p := range plan {
		if p.step.Name != "" {
			counts[p.step.Name]++
		}
	}

	taken := map[string]bool{}
	named := make([]bool, len(plan))
	for i, p := range plan {
		name := p.step.Name
		switch {
		case name == "":
			continue
		case !hclsyntax.ValidIdentifier(name):
			warnings = append(warnings, fmt.Sprintf("step %d: name %q is not a valid identifier, using a generated id", i, name))
			continue
		case counts[name] > 1:
			warnings = append(warnings, fmt.Sprintf("step %d: name %q is used by %d steps, using a generated id", i, name, counts[name]))
			continue
		}
		named[i] = true
		taken[name] = true
	}

	ids := make([]string, len(plan))
	for i, p := range plan {
		if named[i] {
			ids[i] = p.step.Name
			continue
		}
		id := fmt.Sprintf("step_%d", i)
		for taken[id] {
			id += "_"
		}
		taken[id] = true
		ids[i] = id
	}
	return ids, warnings
}

// createNodes adds one node per planned step.
func createNodes(g *graph.Graph, plan []planned, ids []string) error {
	for i, p := range plan {
		n := &graph.Node{
			ID:        ids[i],
			Index:     i,
			Request:   p.req,
			StepType:  p.step.Type,
			Footprint: step.FootprintOf(p.step),
		}
		if err := g.AddNode(n); err != nil {
			return fmt.Errorf("failed to add node %s: %w", n.ID, err)
		}
	}
	return nil
}
