package graph

import (
	"github.com/vk/contestflow/internal/request"
)

// LinearRequests returns the node requests in topological order.
func (g *Graph) LinearRequests() ([]request.Request, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	reqs := make([]request.Request, len(order))
	for i, id := range order {
		n, _ := g.Node(id)
		reqs[i] = n.Request
	}
	return reqs, nil
}

// ToComposite flattens the graph into one composite request that runs every
// node sequentially in topological order.
func (g *Graph) ToComposite(name string) (*request.Composite, error) {
	reqs, err := g.LinearRequests()
	if err != nil {
		return nil, err
	}
	return request.NewComposite(name, reqs...), nil
}
